package utils

import "testing"

func TestRemoveUsernameSuffix(t *testing.T) {
	cases := map[string]string{
		"alice":             "alice",
		"alice@example.org": "alice",
		"alice@foo@bar":     "alice",
		"":                  "",
	}
	for input, expected := range cases {
		if actual := RemoveUsernameSuffix(input); actual != expected {
			t.Errorf("RemoveUsernameSuffix(%q) = %q, expected %q", input, actual, expected)
		}
	}
}
