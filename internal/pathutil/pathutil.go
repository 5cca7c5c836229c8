// Package pathutil manages application file paths and locations
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

const envName = "CATS_ENV"

// Paths holds all application path configurations.
type Paths struct {
	configDir      string
	configFileName string
	boltFileName   string
	sqliteFileName string
	envFileName    string
	logFileName    string

	// Computed absolute paths
	configFilePath string
	boltFilePath   string
	sqliteFilePath string
	envFilePath    string
	logFilePath    string
}

var (
	paths *Paths
	once  sync.Once
)

// Initialize must be called once at program startup.
func Initialize() error {
	var initErr error

	once.Do(func() {
		paths = &Paths{
			configDir:      "cats",
			configFileName: "config.yml",
			boltFileName:   "cats.db",
			sqliteFileName: "cats.sqlite",
			envFileName:    ".env",
			logFileName:    "cats.log",
		}

		paths.applyEnvironmentOverrides()
		initErr = paths.computePaths()
	})

	return initErr
}

// Must panics if paths haven't been initialized.
func Must() *Paths {
	if paths == nil {
		panic("pathutil.Initialize() must be called before accessing paths")
	}

	return paths
}

func Dir() string {
	return Must().configDir
}

func ConfigFilePath() string {
	return Must().configFilePath
}

// DBFilePath returns the default database location for the given store
// driver.
func DBFilePath(driver string) string {
	if driver == "sqlite" {
		return Must().sqliteFilePath
	}

	return Must().boltFilePath
}

func EnvFilePath() string {
	return Must().envFilePath
}

func LogFilePath() string {
	return Must().logFilePath
}

func (p *Paths) applyEnvironmentOverrides() {
	catsEnv := strings.TrimSpace(os.Getenv(envName))
	if catsEnv != "" {
		p.configFileName = fmt.Sprintf("config_%s.yml", catsEnv)
		p.boltFileName = fmt.Sprintf("cats_%s.db", catsEnv)
		p.sqliteFileName = fmt.Sprintf("cats_%s.sqlite", catsEnv)
		p.logFileName = fmt.Sprintf("cats_%s.log", catsEnv)
	}
}

func (p *Paths) computePaths() error {
	var err error

	relPath := filepath.Join(p.configDir, p.configFileName)

	p.configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		return err
	}

	p.envFilePath = filepath.Join(filepath.Dir(p.configFilePath), p.envFileName)

	dataDir, err := xdg.DataFile(p.configDir)
	if err != nil {
		return err
	}

	p.boltFilePath = filepath.Join(dataDir, p.boltFileName)

	p.sqliteFilePath = filepath.Join(dataDir, p.sqliteFileName)

	p.logFilePath = filepath.Join(dataDir, "log", p.logFileName)

	return nil
}
