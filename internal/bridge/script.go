package bridge

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/teeworldscn/admin-shell/internal/settings"
)

//go:embed shim.js
var shimJS []byte

// ScriptPath is where the remote proxy serves the shim.
const ScriptPath = "/__shell/bridge.js"

// PageConfig is handed to the shim when it is injected.
type PageConfig struct {
	Title                string              `json:"title"`
	RestrictedPathSuffix string              `json:"restrictedPathSuffix"`
	LogoutSelector       string              `json:"logoutSelector"`
	Override             settings.Permission `json:"override"`
}

// Script renders the page shim with cfg baked in. It is rendered per
// request so a reloaded page always starts from the current override.
func Script(cfg PageConfig) ([]byte, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode page config: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("window.__adminShellConfig = ")
	buf.Write(raw)
	buf.WriteString(";\n")
	buf.Write(shimJS)
	return buf.Bytes(), nil
}
