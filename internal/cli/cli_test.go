package cli

import (
	"testing"

	"github.com/google/uuid"
)

func TestRootRegistersSubcommands(t *testing.T) {
	want := map[string]bool{"serve": false, "migrate": false, "call": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("subcommand %q not registered", name)
		}
	}
}

func TestCallRequiresOneContact(t *testing.T) {
	if err := callCmd.Args(callCmd, nil); err == nil {
		t.Fatalf("call without contact id should fail")
	}
	if err := callCmd.Args(callCmd, []string{"a", "b"}); err == nil {
		t.Fatalf("call with two ids should fail")
	}
	if f := callCmd.Flags().Lookup("user"); f == nil {
		t.Fatalf("call should define --user")
	}
}

func TestParseCallArgs(t *testing.T) {
	contact, user := uuid.New(), uuid.New()
	gotContact, gotUser, err := parseCallArgs(contact.String(), user.String())
	if err != nil || gotContact != contact || gotUser != user {
		t.Fatalf("parseCallArgs: contact=%v user=%v err=%v", gotContact, gotUser, err)
	}
	if _, _, err := parseCallArgs("nope", user.String()); err == nil {
		t.Fatalf("bad contact id should fail")
	}
	if _, _, err := parseCallArgs(contact.String(), ""); err == nil {
		t.Fatalf("missing user should fail")
	}
}
