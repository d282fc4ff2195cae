package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPackageManager(t *testing.T) {
	tests := []struct {
		name      string
		lockfiles []string
		want      string
	}{
		{"none", nil, ""},
		{"npm", []string{"package-lock.json"}, "npm"},
		{"pnpm", []string{"pnpm-lock.yaml"}, "pnpm"},
		{"bun text lockfile", []string{"bun.lock"}, "bun"},
		{"pnpm wins over npm", []string{"package-lock.json", "pnpm-lock.yaml"}, "pnpm"},
		{"yarn wins over npm", []string{"package-lock.json", "yarn.lock"}, "yarn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, lf := range tt.lockfiles {
				require.NoError(t, os.WriteFile(filepath.Join(dir, lf), nil, 0644))
			}

			pm := DetectPackageManager(dir)
			if tt.want == "" {
				assert.Nil(t, pm)
				return
			}
			require.NotNil(t, pm)
			assert.Equal(t, tt.want, pm.Name)
			assert.Equal(t, tt.want+" install", pm.InstallCmd)
		})
	}
}

func TestInstallCommand(t *testing.T) {
	assert.Equal(t, "npm install", installCommand("npm", nil))
	assert.Equal(t, "yarn install react react-dom@18", installCommand("yarn", []string{"react", " ", "react-dom@18"}))
	assert.Equal(t, "npm install 'left pad' 'a;b'", installCommand("npm", []string{"left pad", "a;b"}))
}

func TestParseCD(t *testing.T) {
	tests := []struct {
		command string
		want    string
		ok      bool
	}{
		{"cd app", "app", true},
		{"  cd   ../shared ", "../shared", true},
		{`cd "my app"`, `"my app"`, true},
		{"cd", "", false},
		{"cd app && npm i", "", false},
		{"cd app; ls", "", false},
		{"cdk deploy", "", false},
		{"echo cd app", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got, ok := parseCD(tt.command)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCursorChange(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	c := NewCursor("/work")
	assert.Equal(t, filepath.Join("/work", "app"), c.Change("app"))
	assert.Equal(t, filepath.Join("/work", "app", "src"), c.Change("'src'"))
	assert.Equal(t, "/work", c.Change("../.."))
	assert.Equal(t, filepath.Join(home, "code"), c.Change("~/code"))
}
