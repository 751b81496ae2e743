package script

import (
	"fmt"
	"strings"

	"github.com/terassyi/nsid/internal/action"
)

// helper names an NSIS function the rendered sections call.
type helper string

const (
	helperAppend  helper = "AppendToList"
	helperPrepend helper = "PrependToList"
	helperRemove  helper = "RemoveListFragment"
)

// helperOrder fixes the order helpers are emitted in.
var helperOrder = []helper{helperAppend, helperPrepend, helperRemove}

var helperKinds = map[helper]action.Kind{
	helperAppend:  action.KindEnvAppend,
	helperPrepend: action.KindEnvPrepend,
	helperRemove:  action.KindEnvRemoveFragment,
}

// Stack in: list, fragment, separator (separator on top). Stack out: the
// new list. $0-$2 are preserved.
const listAddBody = `Function %[1]s
  Exch $2
  Exch
  Exch $1
  Exch 2
  Exch $0
  StrCmp $0 "" 0 +3
    StrCpy $0 $1
    Goto +2
  StrCpy $0 %[2]s
  Exch $0
  Exch 2
  Pop $1
  Pop $2
FunctionEnd
`

// Stack in: list, fragment, separator, "start" or "end" (on top). Stack
// out: the new list, then a status on top that is 1 when a whole-element
// occurrence was removed and 0 when the list was left unchanged.
// Comparison is case-sensitive. Clobbers $R0-$R9.
const listRemoveBody = `Function %[1]s
  Pop $R3
  Pop $R2
  Pop $R1
  Pop $R0
  StrCpy $R4 "$R2$R0$R2"
  StrCpy $R5 "$R2$R1$R2"
  StrLen $R6 $R5
  StrLen $R7 $R4
  IntOp $R8 $R7 - $R6
  StrCmpS $R3 "start" 0 search_end
  StrCpy $R9 0
  search_start:
    IntCmp $R9 $R8 0 0 not_found
    StrCpy $R7 $R4 $R6 $R9
    StrCmpS $R7 $R5 found
    IntOp $R9 $R9 + 1
    Goto search_start
  search_end:
  StrCpy $R9 $R8
  search_end_loop:
    IntCmp $R9 0 0 not_found 0
    StrCpy $R7 $R4 $R6 $R9
    StrCmpS $R7 $R5 found
    IntOp $R9 $R9 - 1
    Goto search_end_loop
  found:
    StrLen $R1 $R2
    StrCpy $R7 ""
    IntCmp $R9 0 +2
      StrCpy $R7 $R4 $R9
    IntOp $R8 $R9 + $R6
    IntOp $R8 $R8 - $R1
    StrCpy $R8 $R4 "" $R8
    StrCpy $R7 "$R7$R8"
    StrCpy $R0 ""
    StrCmpS $R7 $R2 removed
    StrCpy $R7 $R7 "" $R1
    StrLen $R8 $R7
    IntOp $R8 $R8 - $R1
    IntCmp $R8 0 removed removed
    StrCpy $R0 $R7 $R8
  removed:
    Push $R0
    Push 1
    Return
  not_found:
    Push $R0
    Push 0
FunctionEnd
`

// usedHelpers returns the helpers seq calls, in emission order.
func usedHelpers(seq action.Sequence) []helper {
	var out []helper
	for _, h := range helperOrder {
		if seq.Has(helperKinds[h]) {
			out = append(out, h)
		}
	}
	return out
}

// Helpers returns the definitions of the list helper functions that the
// rendering of seq in section calls. It is empty when none are needed.
func (e *Emitter) Helpers(section Section, seq action.Sequence) string {
	var b strings.Builder
	for _, h := range usedHelpers(seq) {
		name := section.prefix() + string(h)
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		switch h {
		case helperAppend:
			b.WriteString(fmt.Sprintf(listAddBody, name, `"$0$2$1"`))
		case helperPrepend:
			b.WriteString(fmt.Sprintf(listAddBody, name, `"$1$2$0"`))
		case helperRemove:
			b.WriteString(fmt.Sprintf(listRemoveBody, name))
		}
	}
	return b.String()
}
