package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terassyi/nsid/internal/action"
)

func TestSpec_InstallDir(t *testing.T) {
	tests := []struct {
		name     string
		preset   Preset
		override string
		want     string
	}{
		{"64-bit", Preset64, "", `$PROGRAMFILES64\${APPNAME}`},
		{"32-bit", Preset32, "", `$PROGRAMFILES32\${APPNAME}`},
		{"per-user", PresetUser, "", `$LOCALAPPDATA\${APPNAME}`},
		{"override", Preset64, `D:\Apps\Foo`, `D:\Apps\Foo`},
		{"override with marker", Preset64, `/D=D:\Apps\Foo`, `D:\Apps\Foo`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Spec{Name: "Foo", Version: "1.0.0", InstallDirPreset: tt.preset}
			s.Options.DataDirOverride = tt.override
			s.SetDefaults()
			assert.Equal(t, tt.want, s.InstallDir())
		})
	}
}

func TestSpec_OutFile(t *testing.T) {
	s := New("Foo", "1.2.3")
	assert.Equal(t, "Foo-1.2.3-x86_64.exe", s.OutFile())
	assert.Equal(t, 64, s.RegView())

	s.InstallDirPreset = Preset32
	assert.Equal(t, "Foo-1.2.3-x86.exe", s.OutFile())
	assert.Equal(t, 32, s.RegView())

	s.OutputPath = "setup.exe"
	assert.Equal(t, "setup.exe", s.OutFile())
}

func TestSpec_ProductVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
		wantErr bool
	}{
		{version: "1.2.3", want: "1.2.3.0"},
		{version: "v2.0.0-rc.1", want: "2.0.0.0"},
		{version: "3.1", want: "3.1.0.0"},
		{version: "latest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			s := New("Foo", tt.version)
			got, err := s.ProductVersion()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpec_InstallSequence(t *testing.T) {
	s := New("Foo", "1.0.0")
	require.NoError(t, s.AddFile(File{Source: "foo.exe"}))
	require.NoError(t, s.AddFile(File{Source: "share", Destination: "share", Recursive: true}))
	env, err := action.NewEnvAppend(action.ScopeUser, "PATH", "$INSTDIR", ";")
	require.NoError(t, err)
	require.NoError(t, s.AddAction(env))

	seq, err := s.InstallSequence()
	require.NoError(t, err)
	require.Equal(t, 3, seq.Len())

	first, ok := seq.At(0).(action.CopyFile)
	require.True(t, ok)
	assert.Equal(t, `$INSTDIR\foo.exe`, first.Destination())
	second, ok := seq.At(1).(action.CopyFile)
	require.True(t, ok)
	assert.True(t, second.Recursive())
	assert.Equal(t, action.KindEnvAppend, seq.At(2).Kind())
}
