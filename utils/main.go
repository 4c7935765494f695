package utils

import "regexp"

// usernameSuffixRegexp is a regular expression that can be used to remove suffixes from usernames.
var usernameSuffixRegexp = regexp.MustCompile("@.*$")

// RemoveUsernameSuffix removes the suffix from a username. The identity provider qualifies usernames
// with a domain suffix in some products, so the suffix is removed to ensure that the same slot lease
// and usage log are shared across all of them.
func RemoveUsernameSuffix(username string) string {
	return usernameSuffixRegexp.ReplaceAllString(username, "")
}
