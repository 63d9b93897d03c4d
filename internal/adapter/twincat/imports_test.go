package twincat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractImports(t *testing.T) {
	tests := []struct {
		name string
		decl string
		want []string
	}{
		{
			name: "extends",
			decl: "FUNCTION_BLOCK FB_Child EXTENDS FB_Base\nVAR\n    nValue : INT;\nEND_VAR\n",
			want: []string{"EXTENDS FB_Base"},
		},
		{
			name: "multiple implements",
			decl: "FUNCTION_BLOCK FB_Device IMPLEMENTS I_Device, I_Controllable\nVAR\n    bEnabled : BOOL;\nEND_VAR\n",
			want: []string{"IMPLEMENTS I_Device", "IMPLEMENTS I_Controllable"},
		},
		{
			name: "var external",
			decl: "FUNCTION_BLOCK FB_Test\nVAR_EXTERNAL\n    nGlobal : DINT;\n    sMessage : STRING;\nEND_VAR\nVAR\n    nLocal : INT;\nEND_VAR\n",
			want: []string{"VAR_EXTERNAL nGlobal : DINT", "VAR_EXTERNAL sMessage : STRING"},
		},
		{
			name: "type references",
			decl: "FUNCTION_BLOCK FB_Controller\nVAR\n    fbDevice : FB_Device;\n    stData : ST_ProcessData;\n    eState : E_MachineState;\n    nCounter : DINT;\n    aItems : ARRAY[0..3] OF ST_ProcessData;\n    pDevice : POINTER TO FB_Device;\nEND_VAR\n",
			want: []string{"TYPE FB_Device", "TYPE ST_ProcessData", "TYPE E_MachineState"},
		},
		{
			name: "combined",
			decl: "FUNCTION_BLOCK FB_Combined EXTENDS FB_Base IMPLEMENTS I_Motor, I_Device\nVAR_EXTERNAL\n    nGlobal : DINT;\nEND_VAR\nVAR\n    fbSensor : FB_Sensor;\n    stConfig : ST_Config;\nEND_VAR\n",
			want: []string{
				"EXTENDS FB_Base", "IMPLEMENTS I_Motor", "IMPLEMENTS I_Device",
				"VAR_EXTERNAL nGlobal : DINT", "TYPE FB_Sensor", "TYPE ST_Config",
			},
		},
		{
			name: "primitives only",
			decl: "FUNCTION_BLOCK FB_Primitives\nVAR\n    bFlag : BOOL;\n    nCount : DINT;\n    fValue : REAL;\n    sName : STRING;\nEND_VAR\n",
			want: []string{},
		},
		{
			name: "empty body",
			decl: "FUNCTION_BLOCK FB_Empty\nEND_FUNCTION_BLOCK\n",
			want: []string{},
		},
		{
			name: "malformed declaration",
			decl: "FUNCTION_BLOCK FB_Bad\nVAR\n    x INT;\nEND_VAR\n",
			want: []string{},
		},
	}
	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ExtractImports(pouXML("FB_X", tt.decl, "", "")))
		})
	}
}

func TestExtractImports_InvalidXML(t *testing.T) {
	p := NewParser()
	assert.Equal(t, []string{}, p.ExtractImports("<not valid xml"))
}

func TestExtractImports_LeavesErrorsAlone(t *testing.T) {
	p := NewParser()
	_, err := p.Parse(pouXML("FB_Bad", "FUNCTION_BLOCK FB_Bad\nVAR\n    x INT;\nEND_VAR\n", "", ""))
	assert.NoError(t, err)
	p.ExtractImports(pouXML("FB_Bad", "FUNCTION_BLOCK FB_Bad\nVAR\n    x INT;\nEND_VAR\n", "", ""))
	assert.Len(t, p.Errors(), 1)
}
