package twincat

// pouXML wraps a declaration and implementation in a minimal TcPOU document.
// The declaration CDATA starts on line 4 and the implementation CDATA on
// line 6 plus the number of newlines in decl.
func pouXML(name, decl, impl, nested string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<TcPlcObject Version="1.1.0.1">
  <POU Name="` + name + `" Id="{` + name + `-id}" SpecialFunc="None">
    <Declaration><![CDATA[` + decl + `]]></Declaration>
    <Implementation>
      <ST><![CDATA[` + impl + `]]></ST>
    </Implementation>` + nested + `
  </POU>
</TcPlcObject>`
}

const functionBlockXML = `<?xml version="1.0" encoding="utf-8"?>
<TcPlcObject Version="1.1.0.1">
  <POU Name="FB_Test" Id="{aaaa-bbbb}" SpecialFunc="None">
    <Declaration><![CDATA[FUNCTION_BLOCK FB_Test
VAR_INPUT
    bEnable : BOOL;
END_VAR
VAR
    nCount : INT; // counter
END_VAR
]]></Declaration>
    <Implementation>
      <ST><![CDATA[IF bEnable THEN
    nCount := nCount + 1;
END_IF;]]></ST>
    </Implementation>
    <Action Name="Reset" Id="{act-1}">
      <Implementation>
        <ST><![CDATA[nCount := 0;]]></ST>
      </Implementation>
    </Action>
    <Method Name="M_Add" Id="{m-1}">
      <Declaration><![CDATA[METHOD M_Add : INT
VAR_INPUT
    nDelta : INT;
END_VAR
]]></Declaration>
      <Implementation>
        <ST><![CDATA[WHILE nDelta > 0 DO
    nDelta := nDelta - 1;
END_WHILE;
M_Add := nCount;]]></ST>
      </Implementation>
    </Method>
    <Property Name="Count" Id="{p-1}">
      <Declaration><![CDATA[PROPERTY Count : INT
]]></Declaration>
      <Get Name="Get" Id="{g-1}">
        <Declaration><![CDATA[VAR
END_VAR
]]></Declaration>
        <Implementation>
          <ST><![CDATA[Count := nCount;]]></ST>
        </Implementation>
      </Get>
    </Property>
  </POU>
</TcPlcObject>`

const functionXML = `<?xml version="1.0" encoding="utf-8"?>
<TcPlcObject Version="1.1.0.1">
  <POU Name="FC_Test" Id="{fc-id}" SpecialFunc="None">
    <Declaration><![CDATA[FUNCTION FC_Test : INT
VAR_INPUT
    n : INT;
END_VAR
]]></Declaration>
    <Implementation>
      <ST><![CDATA[FC_Test := 0;
IF n > 0 THEN
    FC_Test := n;
END_IF;]]></ST>
    </Implementation>
  </POU>
</TcPlcObject>`

const lineNumbersXML = `<?xml version="1.0" encoding="utf-8"?>
<TcPlcObject Version="1.1.0.1">
  <POU Name="PRG_Lines" Id="{lines}" SpecialFunc="None">
    <Declaration><![CDATA[PROGRAM PRG_Lines
VAR_INPUT
    bStart : BOOL;
END_VAR
VAR_OUTPUT
    bDone : BOOL;
END_VAR
VAR
    nStep : INT;
END_VAR
]]></Declaration>
    <Implementation>
      <ST><![CDATA[]]></ST>
    </Implementation>
  </POU>
</TcPlcObject>`
