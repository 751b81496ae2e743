package document

import (
	"fmt"

	"github.com/terassyi/nsid/internal/script"
)

// writeLogBody pops a message and appends it to the log file when one is
// open. %s is the function name.
const writeLogBody = `Function %s
  Exch $0
  StrCmp $LOGHANDLE "" 0 +3
    Pop $0
    Return
  FileWrite $LOGHANDLE "$0$\r$\n"
  Pop $0
FunctionEnd
`

// writeLog renders the logging helper for the section.
func writeLog(section script.Section) string {
	return fmt.Sprintf(writeLogBody, prefix(section)+"WriteLog")
}

func prefix(section script.Section) string {
	if section == script.SectionUninstall {
		return "un."
	}
	return ""
}

// onInit renders .onInit or un.onInit: it parses /NOICONS and /LOG[=FILE]
// and opens the log file.
func (a *assembler) onInit(l *lines, section script.Section) {
	p := prefix(section)
	name, mode, defaultLog := ".onInit", "w", `$TEMP\${APPNAME}_install.log`
	if section == script.SectionUninstall {
		name, mode, defaultLog = "un.onInit", "a", `$TEMP\${APPNAME}_uninstall.log`
	}

	l.add(
		rule,
		"; Parse /NOICONS and /LOG[=FILE]",
		"Function "+name,
		"  ${"+p+"GetParameters} $R0",
		"",
	)
	if section == script.SectionInstall {
		l.add(
			"  ClearErrors",
			`  ${GetOptions} $R0 "/NOICONS" $R1`,
			"  IfErrors +2",
			`    StrCpy $NOICONS "1"`,
			"",
		)
	}
	l.add(
		"  ClearErrors",
		"  ${"+p+`GetOptions} $R0 "/LOG=" $R1`,
		"  IfErrors nsid_plain_log",
		"    StrCpy $LOGFILE $R1",
		"    Goto nsid_open_log",
		"",
		"  nsid_plain_log:",
		"  ClearErrors",
		"  ${"+p+`GetOptions} $R0 "/LOG" $R1`,
		"  IfErrors nsid_no_log",
		`    StrCpy $LOGFILE "`+defaultLog+`"`,
		"    Goto nsid_open_log",
		"",
		"  nsid_no_log:",
	)
	if logPath := a.spec.Options.LogPath; logPath != nil {
		l.add("    StrCpy $LOGFILE " + a.quote(l, "options.logPath", *logPath))
	} else {
		l.add("    Goto nsid_log_done")
	}
	l.add(
		"",
		"  nsid_open_log:",
		"    ${"+p+"GetParent} $LOGFILE $R2",
		`    CreateDirectory "$R2"`,
		"    ClearErrors",
		"    FileOpen $LOGHANDLE $LOGFILE "+mode,
		"    IfErrors 0 +3",
		`      MessageBox MB_ICONEXCLAMATION "Failed to open log file: $LOGFILE" /SD IDOK`,
		`      StrCpy $LOGHANDLE ""`,
		`    Push "Logging enabled: $LOGFILE"`,
		"    Call "+p+"WriteLog",
		"",
		"  nsid_log_done:",
		"FunctionEnd",
		"",
	)
}

// onGUIEnd closes the log file when the wizard exits.
func onGUIEnd(section script.Section) string {
	name := ".onGUIEnd"
	if section == script.SectionUninstall {
		name = "un.onGUIEnd"
	}
	return fmt.Sprintf(`Function %s
  StrCmp $LOGHANDLE "" +2
    FileClose $LOGHANDLE
FunctionEnd
`, name)
}
