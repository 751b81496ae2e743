package document

import (
	"fmt"

	"github.com/terassyi/nsid/internal/action"
	"github.com/terassyi/nsid/internal/script"
)

const uninstallerPath = `$INSTDIR\Uninstall.exe`

// installDocument renders the header, installer functions and the Install
// section.
func (a *assembler) installDocument(install action.Sequence) (string, error) {
	l := &lines{}
	a.header(l)

	l.add(rule, "; Write a message to the log file if logging is enabled")
	l.raw(writeLog(script.SectionInstall))
	l.add("")
	a.onInit(l, script.SectionInstall)
	l.raw(onGUIEnd(script.SectionInstall))
	l.add("")

	registration, err := a.registration()
	if err != nil {
		return "", err
	}
	body := install.Concat(registration)
	if helpers := a.emitter.Helpers(script.SectionInstall, body); helpers != "" {
		l.add(rule, "; List helpers for environment edits")
		l.raw(helpers)
		l.add("")
	}

	l.add(
		rule,
		`Section "Install"`,
		fmt.Sprintf("  SetRegView %d", a.spec.RegView()),
		"  SetShellVarContext "+a.shellContext(),
		`  Push "Installation started"`,
		"  Call WriteLog",
		"",
	)
	rendered, err := a.emitter.Render(script.SectionInstall, body)
	if err != nil {
		return "", err
	}
	l.raw(rendered)
	uninstaller, err := a.emitter.Quote("uninstaller", uninstallerPath)
	if err != nil {
		return "", err
	}
	l.add("  WriteUninstaller " + uninstaller)

	if err := a.shortcuts(l); err != nil {
		return "", err
	}

	l.add(
		"",
		`  Push "Installation finished successfully"`,
		"  Call WriteLog",
		"SectionEnd",
	)
	return l.String()
}

// registration writes the Add/Remove Programs entry and the install
// directory key read back by InstallDirRegKey.
func (a *assembler) registration() (action.Sequence, error) {
	s := a.spec
	for _, f := range []struct{ field, value string }{{"comments", s.Comments}, {"contact", s.Contact}} {
		if _, err := a.emitter.Quote(f.field, f.value); err != nil {
			return action.Sequence{}, err
		}
	}
	root := s.RegistryRoot()
	app, uninstall := a.registrationKeys()
	str := action.ValueString

	var l actionList
	l.add(action.NewRegistryWrite(root, app, "Install_Dir", str, "$INSTDIR"))
	l.add(action.NewRegistryWrite(root, app, "Version", str, "${VERSION}"))
	l.add(action.NewRegistryWrite(root, uninstall, "DisplayName", str, "${APPNAME} ${VERSION}"))
	l.add(action.NewRegistryWrite(root, uninstall, "DisplayVersion", str, "${VERSION}"))
	l.add(action.NewRegistryWrite(root, uninstall, "Publisher", str, "${COMPANYNAME}"))
	l.add(action.NewRegistryWrite(root, uninstall, "UninstallString", str, `"`+uninstallerPath+`"`))
	l.add(action.NewRegistryWrite(root, uninstall, "QuietUninstallString", str, `"`+uninstallerPath+`" /S`))
	l.add(action.NewRegistryWrite(root, uninstall, "InstallLocation", action.ValueExpandString, "$INSTDIR"))
	if s.MainExecutable != "" {
		l.add(action.NewRegistryWrite(root, uninstall, "DisplayIcon", str, `$INSTDIR\${EXEFILE}`))
	}
	for _, v := range []struct{ name, define, value string }{
		{"URLInfoAbout", "${ABOUTURL}", s.AboutURL},
		{"HelpLink", "${HELPURL}", s.HelpURL},
		{"URLUpdateInfo", "${UPDATEURL}", s.UpdateURL},
	} {
		if v.value != "" {
			l.add(action.NewRegistryWrite(root, uninstall, v.name, str, v.define))
		}
	}
	if s.Comments != "" {
		l.add(action.NewRegistryWrite(root, uninstall, "Comments", str, s.Comments))
	}
	if s.Contact != "" {
		l.add(action.NewRegistryWrite(root, uninstall, "Contact", str, s.Contact))
	}
	if s.EstimatedSizeKB > 0 {
		l.add(action.NewRegistryWrite(root, uninstall, "EstimatedSize", action.ValueDWORD, fmt.Sprint(s.EstimatedSizeKB)))
	}
	l.add(action.NewRegistryWrite(root, uninstall, "NoModify", action.ValueDWORD, "1"))
	l.add(action.NewRegistryWrite(root, uninstall, "NoRepair", action.ValueDWORD, "1"))
	return l.sequence()
}

// shortcutPaths returns the start menu folder and the two links created
// for the main executable.
func shortcutPaths() (folder, startMenu, desktop string) {
	return `$SMPROGRAMS\${APPNAME}`, `$SMPROGRAMS\${APPNAME}\${APPNAME}.lnk`, `$DESKTOP\${APPNAME}.lnk`
}

func (a *assembler) wantsShortcuts() bool {
	return a.spec.MainExecutable != "" && !a.spec.Options.NoIcons
}

// shortcuts creates the start menu and desktop links unless /NOICONS was
// given.
func (a *assembler) shortcuts(l *lines) error {
	if !a.wantsShortcuts() {
		return nil
	}
	_, startMenu, desktop := shortcutPaths()
	var list actionList
	list.add(action.NewCreateShortcut(startMenu, `$INSTDIR\${EXEFILE}`, "", ""))
	list.add(action.NewCreateShortcut(desktop, `$INSTDIR\${EXEFILE}`, "", ""))
	seq, err := list.sequence()
	if err != nil {
		return err
	}
	rendered, err := script.NewEmitter(a.emitter.Encoding(), script.Options{
		Variables: Variables,
		Indent:    "    ",
	}).Render(script.SectionInstall, seq)
	if err != nil {
		return err
	}
	l.add(
		"",
		`  StrCmp $NOICONS "1" nsid_skip_shortcuts`,
		`    Push "Creating shortcuts"`,
		"    Call WriteLog",
	)
	l.raw(rendered)
	l.add("  nsid_skip_shortcuts:")
	return nil
}

// uninstallDocument renders the uninstaller functions and the Uninstall
// section: shortcut removal, the planned reversal, registration cleanup and
// the install directory.
func (a *assembler) uninstallDocument(planned action.Sequence) (string, error) {
	body, err := a.uninstallSequence(planned)
	if err != nil {
		return "", err
	}

	l := &lines{}
	l.add(rule, "; Uninstaller")
	l.raw(writeLog(script.SectionUninstall))
	l.add("")
	a.onInit(l, script.SectionUninstall)
	l.raw(onGUIEnd(script.SectionUninstall))
	l.add("")

	if helpers := a.emitter.Helpers(script.SectionUninstall, body); helpers != "" {
		l.add(rule, "; List helpers for environment edits")
		l.raw(helpers)
		l.add("")
	}

	l.add(
		rule,
		`Section "Uninstall"`,
		fmt.Sprintf("  SetRegView %d", a.spec.RegView()),
		"  SetShellVarContext "+a.shellContext(),
		`  Push "Uninstallation started"`,
		"  Call un.WriteLog",
		"",
	)
	rendered, err := a.emitter.Render(script.SectionUninstall, body)
	if err != nil {
		return "", err
	}
	l.raw(rendered)
	l.add(
		"",
		`  Push "Uninstallation finished"`,
		"  Call un.WriteLog",
		"SectionEnd",
	)
	return l.String()
}

// uninstallSequence appends the fixed cleanup to the planned reversal.
func (a *assembler) uninstallSequence(planned action.Sequence) (action.Sequence, error) {
	var l actionList
	if a.wantsShortcuts() {
		folder, startMenu, desktop := shortcutPaths()
		l.add(action.NewDeleteShortcut(startMenu))
		l.add(action.NewRemoveDir(folder))
		l.add(action.NewDeleteShortcut(desktop))
	}
	l.actions = append(l.actions, planned.Actions()...)

	root := a.spec.RegistryRoot()
	app, uninstall := a.registrationKeys()
	l.add(action.NewRegistryDeleteKey(root, uninstall, nil, false))
	l.add(action.NewRegistryDeleteKey(root, app, nil, false))
	l.add(action.NewDeleteFile(uninstallerPath, false))
	// $INSTDIR may be a directory the user picked; only remove it empty.
	l.add(action.NewRemoveDir("$INSTDIR"))
	return l.sequence()
}
