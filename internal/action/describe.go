package action

import "fmt"

// Describe returns a one-line human readable summary of an action.
func Describe(a Action) string {
	switch v := a.(type) {
	case CopyFile:
		if v.recursive {
			return fmt.Sprintf("copy %s\\* -> %s", v.source, v.destination)
		}
		return fmt.Sprintf("copy %s -> %s", v.source, v.destination)
	case CreateDir:
		return "mkdir " + v.path
	case CreateShortcut:
		return fmt.Sprintf("shortcut %s -> %s", v.path, v.target)
	case ExecPostInstall:
		return fmt.Sprintf("exec %s %s", v.command, v.arguments)
	case DeleteFile:
		if v.recursive {
			return "delete tree " + v.path
		}
		return "delete " + v.path
	case RemoveDir:
		return "rmdir (if empty) " + v.path
	case DeleteShortcut:
		return "delete shortcut " + v.path
	case RegistryWrite:
		return fmt.Sprintf("%s\\%s [%s] = %s (%s)", v.root, v.key, v.valueName, v.data, v.valueType)
	case RegistryDeleteValue:
		return fmt.Sprintf("delete %s\\%s [%s]", v.root, v.key, v.valueName)
	case RegistryDeleteKey:
		if v.ifEmpty {
			return fmt.Sprintf("delete key %s\\%s (if empty, values %v)", v.root, v.key, v.values)
		}
		return fmt.Sprintf("delete key %s\\%s", v.root, v.key)
	case EnvSet:
		return fmt.Sprintf("%s env %s = %s", v.scope, v.name, v.value)
	case EnvAppend:
		return fmt.Sprintf("%s env %s += %s%s", v.scope, v.name, v.separator, v.fragment)
	case EnvPrepend:
		return fmt.Sprintf("%s env %s = %s%s + %s", v.scope, v.name, v.fragment, v.separator, v.name)
	case EnvRemove:
		return fmt.Sprintf("%s env unset %s", v.scope, v.name)
	case EnvRestore:
		return fmt.Sprintf("%s env %s = %s (restore)", v.scope, v.name, v.previous)
	case EnvRemoveFragment:
		return fmt.Sprintf("%s env %s -= %s (from %s)", v.scope, v.name, v.fragment, v.from)
	default:
		return string(a.Kind()) + " " + a.Target()
	}
}
