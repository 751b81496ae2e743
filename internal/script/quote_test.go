package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoter_Escape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		extra []string
		in    string
		want  string
	}{
		{name: "plain path", in: `C:\Program Files\App`, want: `C:\Program Files\App`},
		{name: "double quotes", in: `say "hi"`, want: `say $\"hi$\"`},
		{name: "control characters", in: "a\r\nb\tc", want: `a$\r$\nb$\tc`},
		{name: "builtin variable", in: `$INSTDIR\bin`, want: `$INSTDIR\bin`},
		{name: "longest builtin", in: `$PROGRAMFILES64\App`, want: `$PROGRAMFILES64\App`},
		{name: "builtin followed by text", in: `$TEMP.log`, want: `$TEMP.log`},
		{name: "register", in: `$0;$9`, want: `$0;$9`},
		{name: "R register", in: `$R0 $R9`, want: `$R0 $R9`},
		{name: "define", in: `${APPNAME} ${VERSION}`, want: `${APPNAME} ${VERSION}`},
		{name: "langstring", in: `$(^Name)`, want: `$(^Name)`},
		{name: "environment", in: `$%TEMP%\x`, want: `$%TEMP%\x`},
		{name: "escaped dollar", in: `$$`, want: `$$`},
		{name: "lone dollar", in: `price $`, want: `price $$`},
		{name: "dollar amount", in: `$ 5`, want: `$$ 5`},
		{name: "unknown variable", in: `$FOO`, want: `$$FOO`},
		{name: "declared variable", extra: []string{"FOO"}, in: `$FOO`, want: `$FOO`},
		{name: "unterminated define", in: `${APPNAME`, want: `$${APPNAME`},
		{name: "empty define", in: `${}`, want: `$${}`},
		{name: "unterminated environment", in: `50$%`, want: `50$$%`},
		{name: "not a register", in: `$Rx`, want: `$$Rx`},
		{name: "non-ascii", in: `Grüße`, want: `Grüße`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := newQuoter(tt.extra)
			assert.Equal(t, tt.want, q.Escape(tt.in))
			assert.Equal(t, `"`+tt.want+`"`, q.Quote(tt.in))
		})
	}
}
