package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terassyi/nsid/internal/action"
	"github.com/terassyi/nsid/internal/reversal"
)

func TestFile_Destination(t *testing.T) {
	tests := []struct {
		name string
		file File
		want string
	}{
		{"default is base name", File{Source: "build/bin/app.exe"}, `$INSTDIR\app.exe`},
		{"windows separators", File{Source: `build\bin\app.exe`}, `$INSTDIR\app.exe`},
		{"recursive default", File{Source: "assets", Recursive: true}, `$INSTDIR`},
		{"relative", File{Source: "a.dll", Destination: "lib/a.dll"}, `$INSTDIR\lib\a.dll`},
		{"variable", File{Source: "a.ini", Destination: `$APPDATA\App\a.ini`}, `$APPDATA\App\a.ini`},
		{"drive", File{Source: "a.ini", Destination: `C:\App\a.ini`}, `C:\App\a.ini`},
		{"trailing separator", File{Source: "data", Destination: `data\`, Recursive: true}, `$INSTDIR\data`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.file.destination())
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New("App", "1.0.0")

	assert.Equal(t, Preset64, s.InstallDirPreset)
	assert.Equal(t, "Installation Wizard", s.Caption)
	assert.Equal(t, Compression{Algorithm: "lzma", Solid: true}, s.Compression)
	assert.Equal(t, ScopePerMachine, s.Options.InstallScope)
	assert.Equal(t, ExecAdmin, s.Options.ExecutionLevel)
	assert.Equal(t, []string{"English"}, s.Options.Languages)
}

func TestSetDefaults_PerUserPreset(t *testing.T) {
	s := &Spec{Name: "App", Version: "1.0.0", InstallDirPreset: PresetUser}
	s.SetDefaults()

	assert.Equal(t, ScopePerUser, s.Options.InstallScope)
	assert.Equal(t, ExecUser, s.Options.ExecutionLevel)
	assert.True(t, s.PerUser())
	assert.Equal(t, action.RootHKCU, s.RegistryRoot())
}

func TestSpec_AddFile(t *testing.T) {
	s := New("App", "1.0.0")

	require.NoError(t, s.AddFile(File{Source: "app.exe"}))
	assert.Error(t, s.AddFile(File{Source: "  "}))
	assert.Len(t, s.Files, 1)

	require.NoError(t, s.RemoveFile(0))
	assert.Empty(t, s.Files)
	assert.Error(t, s.RemoveFile(0))
}

func TestSpec_AddAction(t *testing.T) {
	s := New("App", "1.0.0")

	dir, err := action.NewCreateDir(`$INSTDIR\logs`)
	require.NoError(t, err)
	require.NoError(t, s.AddAction(dir))

	del, err := action.NewDeleteFile(`$INSTDIR\x`, false)
	require.NoError(t, err)
	assert.Error(t, s.AddAction(del))
	assert.Error(t, s.AddAction(nil))

	assert.Equal(t, 1, s.Actions.Len())
}

func TestSpec_MoveAction(t *testing.T) {
	s := New("App", "1.0.0")
	a, err := action.NewCreateDir(`$INSTDIR\a`)
	require.NoError(t, err)
	b, err := action.NewCreateDir(`$INSTDIR\b`)
	require.NoError(t, err)
	require.NoError(t, s.AddAction(a))
	require.NoError(t, s.AddAction(b))

	require.NoError(t, s.MoveAction(1, 0))
	assert.Equal(t, action.Action(b), s.Actions.At(0))
	assert.Equal(t, action.Action(a), s.Actions.At(1))

	require.NoError(t, s.RemoveAction(0))
	assert.Equal(t, 1, s.Actions.Len())
	assert.Error(t, s.MoveAction(0, 3))
}

func TestSpec_Clone(t *testing.T) {
	prev := `C:\bin`
	s := New("App", "1.0.0")
	require.NoError(t, s.AddFile(File{Source: "app.exe"}))
	s.Options.Languages = []string{"English", "German"}
	s.Snapshot = &reversal.StaticSnapshot{
		Keys:   map[string]bool{`HKCU\Software\App`: false},
		Values: map[string]map[string]reversal.RegistryValue{`HKCU\Software`: {"X": {Type: action.ValueString, Data: "1"}}},
		Vars:   map[string]*string{"user/PATH": &prev},
	}
	s.Manifests = map[string][]string{"assets": {"a.txt"}}

	c := s.Clone()
	require.Equal(t, s, c)

	c.Files[0].Source = "other.exe"
	c.Options.Languages[1] = "French"
	c.Snapshot.Keys[`HKCU\Software\App`] = true
	c.Snapshot.Values[`HKCU\Software`]["X"] = reversal.RegistryValue{Type: action.ValueString, Data: "2"}
	*c.Snapshot.Vars["user/PATH"] = "changed"
	c.Manifests["assets"][0] = "b.txt"

	assert.Equal(t, "app.exe", s.Files[0].Source)
	assert.Equal(t, "German", s.Options.Languages[1])
	assert.False(t, s.Snapshot.Keys[`HKCU\Software\App`])
	assert.Equal(t, "1", s.Snapshot.Values[`HKCU\Software`]["X"].Data)
	assert.Equal(t, `C:\bin`, *s.Snapshot.Vars["user/PATH"])
	assert.Equal(t, "a.txt", s.Manifests["assets"][0])
}
