// Copyright 2025 Barmatch Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import "strings"

// replyKeys are the only keys the extraction reply schema contains. Longer
// keys come first so a prefix match never shadows a longer one.
var replyKeys = []string{"confidence", "remainder", "facts", "value", "kind"}

// repairFactReply normalizes a model reply into parseable JSON for the fact
// schema: code fences and surrounding chatter are stripped, known keys that
// lost one or both quotes are requoted, and trailing commas are dropped.
// Anything it cannot fix is left for json.Unmarshal to reject.
func repairFactReply(s string) string {
	s = stripFences(s)
	if start := strings.IndexByte(s, '{'); start >= 0 {
		if end := strings.LastIndexByte(s, '}'); end > start {
			s = s[start : end+1]
		}
	}
	return dropTrailingCommas(quoteBareKeys(s))
}

// quoteBareKeys restores quoting on the reply's known keys, covering both
// `{facts: [...]}` and the missing-opening-quote form `{facts": [...]}`.
// Braces and commas inside string values never trigger a repair.
func quoteBareKeys(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	inString := false
	for i := 0; i < len(s); {
		ch := s[i]
		b.WriteByte(ch)
		i++
		if ch == '"' && (i < 2 || s[i-2] != '\\') {
			inString = !inString
		}
		if inString || (ch != '{' && ch != ',') {
			continue
		}
		for i < len(s) && (s[i] == ' ' || s[i] == '\n' || s[i] == '\t') {
			b.WriteByte(s[i])
			i++
		}
		key, width := bareKeyAt(s[i:])
		if key == "" {
			continue
		}
		b.WriteByte('"')
		b.WriteString(key)
		b.WriteByte('"')
		i += width
	}
	return b.String()
}

// bareKeyAt reports which known key starts at s without its opening quote and
// how many bytes it spans, including a stray closing quote. The key must be
// followed by a colon, otherwise it is value text and stays untouched.
func bareKeyAt(s string) (string, int) {
	for _, key := range replyKeys {
		if !strings.HasPrefix(s, key) {
			continue
		}
		n := len(key)
		if n < len(s) && s[n] == '"' {
			n++
		}
		m := n
		for m < len(s) && (s[m] == ' ' || s[m] == '\t') {
			m++
		}
		if m < len(s) && s[m] == ':' {
			return key, n
		}
	}
	return "", 0
}

// dropTrailingCommas removes commas that sit directly before a closing brace
// or bracket, outside of string values.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' && (i == 0 || s[i-1] != '\\') {
			inString = !inString
		}
		if !inString && ch == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\t') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// stripFences removes markdown code fences a model sometimes wraps around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
