package normalization

import (
  "strings"
)

// ParseInputString lowercases and trims user-supplied identity fields
// (emails, names). Quiz answers are never passed through here: answer
// matching is exact by contract.
func ParseInputString(input string) string {
  normalized := strings.ToLower(strings.TrimSpace(input))
  return normalized
}

func TrimInputString(input string) string {
  return strings.TrimSpace(input)
}
