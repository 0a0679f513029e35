package validator_test

import (
	"testing"

	"github.com/tjper/podsh/internal/validator"
	"golang.org/x/sys/unix"
)

func TestParseJID(t *testing.T) {
	cases := map[string]struct {
		args    []string
		want    int
		wantErr bool
	}{
		"valid":         {args: []string{"7"}, want: 7},
		"missing":       {args: nil, wantErr: true},
		"too many":      {args: []string{"7", "8"}, wantErr: true},
		"non-numeric":   {args: []string{"abc"}, wantErr: true},
		"zero job id":   {args: []string{"0"}, want: 0},
		"negative form": {args: []string{"-7"}, want: -7},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := validator.ParseJID("fg", tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseJID(%v) err = nil; want error", tc.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJID(%v) err = %v; want nil", tc.args, err)
			}
			if got != tc.want {
				t.Fatalf("ParseJID(%v) = %d; want %d", tc.args, got, tc.want)
			}
		})
	}
}

func TestParseExportArg(t *testing.T) {
	cases := map[string]struct {
		args      []string
		wantName  string
		wantValue string
		wantErr   bool
	}{
		"name=value": {args: []string{"FOO=bar"}, wantName: "FOO", wantValue: "bar"},
		"name only":  {args: []string{"FOO"}, wantName: "FOO", wantValue: ""},
		"leading =":  {args: []string{"=bar"}, wantErr: true},
		"no args":    {args: nil, wantErr: true},
		"extra args": {args: []string{"FOO", "BAR"}, wantErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			gotName, gotValue, err := validator.ParseExportArg(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseExportArg(%v) err = nil; want error", tc.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseExportArg(%v) err = %v; want nil", tc.args, err)
			}
			if gotName != tc.wantName || gotValue != tc.wantValue {
				t.Fatalf("ParseExportArg(%v) = (%q, %q); want (%q, %q)", tc.args, gotName, gotValue, tc.wantName, tc.wantValue)
			}
		})
	}
}

func TestParseKillArgs(t *testing.T) {
	cases := map[string]struct {
		args    []string
		wantSig unix.Signal
		wantPID int
		wantErr bool
	}{
		"default signal":  {args: []string{"123"}, wantSig: unix.SIGTERM, wantPID: 123},
		"named signal":    {args: []string{"-s", "SIGKILL", "123"}, wantSig: unix.SIGKILL, wantPID: 123},
		"numeric signal":  {args: []string{"-s", "9", "123"}, wantSig: unix.Signal(9), wantPID: 123},
		"invalid signal":  {args: []string{"-s", "SIGBOGUS", "123"}, wantErr: true},
		"missing pid":     {args: nil, wantErr: true},
		"non-numeric pid": {args: []string{"abc"}, wantErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			gotSig, gotPID, err := validator.ParseKillArgs(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseKillArgs(%v) err = nil; want error", tc.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKillArgs(%v) err = %v; want nil", tc.args, err)
			}
			if gotSig != tc.wantSig || gotPID != tc.wantPID {
				t.Fatalf("ParseKillArgs(%v) = (%v, %d); want (%v, %d)", tc.args, gotSig, gotPID, tc.wantSig, tc.wantPID)
			}
		})
	}
}
