package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Dir returns the ymatch config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/ymatch if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", eris.Wrap(err, "config: home directory")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "ymatch"), nil
}

// Aliases maps short names to Yelp user ids, so that
// "ymatch friends alice" works instead of the 22-character id.
type Aliases struct {
	Users map[string]string
}

// LoadAliases reads {dir}/aliases, one "name=user_id" per line. A missing
// file yields an empty set. Malformed lines are skipped.
func LoadAliases(dir string) (*Aliases, error) {
	a := &Aliases{Users: make(map[string]string)}

	f, err := os.Open(filepath.Join(dir, "aliases"))
	if err != nil {
		if os.IsNotExist(err) {
			return a, nil
		}
		return a, eris.Wrap(err, "config: open aliases")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, userID, ok := strings.Cut(line, "=")
		name, userID = strings.TrimSpace(name), strings.TrimSpace(userID)
		if !ok || name == "" || userID == "" {
			continue
		}
		a.Users[name] = userID
	}
	if err := scanner.Err(); err != nil {
		return a, eris.Wrap(err, "config: read aliases")
	}
	return a, nil
}

// Resolve returns the user id behind name, or name itself when it is not an
// alias. A nil receiver resolves nothing.
func (a *Aliases) Resolve(name string) string {
	if a == nil {
		return name
	}
	if id, ok := a.Users[name]; ok {
		return id
	}
	return name
}
