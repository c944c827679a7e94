package yaml

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// SafeString returns a string which is sufficiently quoted and escaped for YAML.
func SafeString(str string) string {
	str = strings.Replace(str, "\\", "\\\\", -1)
	str = strings.Replace(str, "\"", "\\\"", -1)
	str = strings.Replace(str, "\n", "\\n", -1)
	return "\"" + str + "\""
}

// SafeList formats the strings as a YAML flow sequence.
func SafeList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = SafeString(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func sortedKeys(size int, each func(func(string))) []string {
	keys := make([]string, 0, size)
	each(func(key string) { keys = append(keys, key) })
	sort.Strings(keys)
	return keys
}

// PrintBools outputs a string to bool mapping as a YAML block sorted by key.
//
// `indent` is the current YAML indentation level - the number of spaces.
// `name` is the name of the corresponding YAML block. If empty, no separate block is created.
func PrintBools(writer io.Writer, values map[string]bool, indent int, name string) {
	keys := sortedKeys(len(values), func(add func(string)) {
		for key := range values {
			add(key)
		}
	})
	printBlock(writer, keys, indent, name, func(key string) string {
		return fmt.Sprint(values[key])
	})
}

// PrintCounts outputs a string to int mapping as a YAML block sorted by key.
func PrintCounts(writer io.Writer, values map[string]int, indent int, name string) {
	keys := sortedKeys(len(values), func(add func(string)) {
		for key := range values {
			add(key)
		}
	})
	printBlock(writer, keys, indent, name, func(key string) string {
		return fmt.Sprint(values[key])
	})
}

// PrintLists outputs a string to []string mapping as a YAML block sorted by key.
func PrintLists(writer io.Writer, values map[string][]string, indent int, name string) {
	keys := sortedKeys(len(values), func(add func(string)) {
		for key := range values {
			add(key)
		}
	})
	printBlock(writer, keys, indent, name, func(key string) string {
		return SafeList(values[key])
	})
}

func printBlock(writer io.Writer, keys []string, indent int, name string, format func(string) string) {
	if name != "" {
		if len(keys) == 0 {
			fmt.Fprintf(writer, "%s%s: {}\n", strings.Repeat(" ", indent), name)
			return
		}
		fmt.Fprintf(writer, "%s%s:\n", strings.Repeat(" ", indent), name)
		indent += 2
	}
	for _, key := range keys {
		fmt.Fprintf(writer, "%s%s: %s\n", strings.Repeat(" ", indent), SafeString(key), format(key))
	}
}
