package twincat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	xml := "<a>\n  <b x=\"1\"><![CDATA[hello]]></b>\n</a>"

	loc := Locate(xml, 0, "b")
	require.NotNil(t, loc)
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 21, loc.Column)
	assert.Equal(t, 24, loc.Offset)
	assert.Equal(t, "hello", xml[loc.Offset:loc.Offset+5])
}

func TestLocate_FirstLine(t *testing.T) {
	loc := Locate("<b><![CDATA[x]]></b>", 0, "b")
	require.NotNil(t, loc)
	assert.Equal(t, 1, loc.Line)
	assert.Equal(t, 13, loc.Column)
	assert.Equal(t, 12, loc.Offset)
}

func TestLocate_PathAndStart(t *testing.T) {
	xml := `<Action Name="A"><Implementation><ST><![CDATA[a]]></ST></Implementation></Action>
<Action Name="B"><Implementation><ST><![CDATA[b]]></ST></Implementation></Action>`

	second := Locate(xml, 84, "Implementation", "ST")
	require.NotNil(t, second)
	assert.Equal(t, 2, second.Line)
	assert.Equal(t, "b", xml[second.Offset:second.Offset+1])

	assert.Nil(t, Locate(xml, 0, "Declaration"))
	assert.Nil(t, Locate(xml, len(xml)+1, "ST"))
	assert.Nil(t, Locate("<ST>plain</ST>", 0, "ST"))
}

func TestLocate_TagPrefixIsNotAMatch(t *testing.T) {
	xml := "<Declarations/>\n<Declaration><![CDATA[x]]></Declaration>"
	loc := Locate(xml, 0, "Declaration")
	require.NotNil(t, loc)
	assert.Equal(t, 2, loc.Line)
}

func TestAdjustLine(t *testing.T) {
	assert.Equal(t, 5, AdjustLine(5, nil))
	assert.Equal(t, 14, AdjustLine(5, &SourceLocation{Line: 10}))
	assert.Equal(t, 1, AdjustLine(1, &SourceLocation{Line: 1}))
}
