package document

import (
	"fmt"

	"github.com/terassyi/nsid/internal/project"
)

// header renders everything before the first function: banner, defines,
// installer attributes, version info, MUI configuration and variables.
func (a *assembler) header(l *lines) {
	s := a.spec
	l.add(
		rule,
		fmt.Sprintf("; %s Installer", s.Name),
		fmt.Sprintf("; Generated with %s %s", GeneratorName, a.version),
		rule,
		"",
		a.emitter.Encoding().Directive(),
		"",
	)

	l.add(
		"!define APPNAME "+a.quote(l, "name", s.Name),
		"!define COMPANYNAME "+a.quote(l, "publisher", s.Publisher),
		"!define VERSION "+a.quote(l, "version", s.Version),
	)
	if s.MainExecutable != "" {
		l.add("!define EXEFILE " + a.quote(l, "mainExecutable", s.MainExecutable))
	}
	for _, d := range []struct{ name, field, value string }{
		{"ABOUTURL", "aboutURL", s.AboutURL},
		{"HELPURL", "helpURL", s.HelpURL},
		{"UPDATEURL", "updateURL", s.UpdateURL},
	} {
		if d.value != "" {
			l.add(fmt.Sprintf("!define %s %s", d.name, a.quote(l, d.field, d.value)))
		}
	}
	l.add(
		"OutFile "+a.quote(l, "outputPath", s.OutFile()),
		"",
		`Name "${APPNAME} ${VERSION}"`,
		"Caption "+a.quote(l, "caption", s.Caption),
		"",
		a.compressor(),
		"RequestExecutionLevel "+string(s.Options.ExecutionLevel),
	)
	if s.Options.Silent {
		l.add("SilentInstall silent", "SilentUnInstall silent")
	}
	l.add("")

	productVersion, err := s.ProductVersion()
	if err != nil {
		l.fail(err)
	}
	l.add(
		fmt.Sprintf("VIProductVersion %q", productVersion),
		`VIAddVersionKey "ProductName" "${APPNAME}"`,
		`VIAddVersionKey "CompanyName" "${COMPANYNAME}"`,
		`VIAddVersionKey "FileDescription" "${APPNAME} Installer"`,
		`VIAddVersionKey "FileVersion" "${VERSION}"`,
		`VIAddVersionKey "ProductVersion" "${VERSION}"`,
	)
	if s.Comments != "" {
		l.add(`VIAddVersionKey "Comments" ` + a.quote(l, "comments", s.Comments))
	}
	l.add(
		"",
		`!include "MUI2.nsh"`,
		`!include "FileFunc.nsh"`,
		`!include "WinMessages.nsh"`,
		"!insertmacro GetParameters",
		"!insertmacro GetOptions",
		"!insertmacro GetParent",
		"!insertmacro un.GetParameters",
		"!insertmacro un.GetOptions",
		"!insertmacro un.GetParent",
		"",
	)

	a.mui(l)

	l.add("")
	if s.BrandingText != "" {
		l.add("BrandingText "+a.quote(l, "brandingText", s.BrandingText), "")
	}
	app, _ := a.registrationKeys()
	l.add(
		"InstallDir "+a.quote(l, "options.dataDirOverride", s.InstallDir()),
		fmt.Sprintf(`InstallDirRegKey %s "%s" "Install_Dir"`, s.RegistryRoot(), app),
		"",
	)
	for _, v := range Variables {
		l.add("Var " + v)
	}
	l.add("")
}

func (a *assembler) compressor() string {
	c := a.spec.Compression
	if c.Solid {
		return "SetCompressor /SOLID " + c.Algorithm
	}
	return "SetCompressor " + c.Algorithm
}

// mui renders the Modern UI defines, pages and languages.
func (a *assembler) mui(l *lines) {
	assets := a.spec.Assets
	l.add(
		`!define MUI_PRODUCT "${APPNAME}"`,
		`!define MUI_VERSION "${VERSION}"`,
		"!define MUI_ABORTWARNING",
	)
	if assets.InstallIcon != "" {
		l.add("!define MUI_ICON " + a.quote(l, "assets.installIcon", assets.InstallIcon))
	}
	if assets.UninstallIcon != "" {
		l.add("!define MUI_UNICON " + a.quote(l, "assets.uninstallIcon", assets.UninstallIcon))
	}
	if assets.WelcomeBitmap != "" {
		l.add("!define MUI_WELCOMEFINISHPAGE_BITMAP " + a.quote(l, "assets.welcomeBitmap", assets.WelcomeBitmap))
	}

	l.add("")
	if assets.WelcomeBitmap != "" {
		l.add("!insertmacro MUI_PAGE_WELCOME")
	}
	if assets.License != "" {
		l.add("!insertmacro MUI_PAGE_LICENSE " + a.quote(l, "assets.license", assets.License))
	}
	l.add(
		"!insertmacro MUI_PAGE_DIRECTORY",
		"!insertmacro MUI_PAGE_INSTFILES",
		"!insertmacro MUI_UNPAGE_CONFIRM",
		"!insertmacro MUI_UNPAGE_INSTFILES",
		"",
	)

	langs, err := project.NormalizeLanguages(a.spec.Options.Languages)
	if err != nil {
		l.fail(err)
		return
	}
	for _, lang := range langs {
		l.add(fmt.Sprintf("!insertmacro MUI_LANGUAGE %q", lang))
	}
}
