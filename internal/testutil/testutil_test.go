package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lepinkainen/bookscout/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestEnv_Path(t *testing.T) {
	env := NewTestEnv(t)

	path := env.Path("subdir", "file.txt")
	assert.True(t, filepath.IsAbs(path))
	assert.Contains(t, path, "subdir")
	assert.Contains(t, path, "file.txt")
}

func TestTestEnv_WriteReadFileString(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("nested/test.txt", "test string content")

	assert.True(t, env.FileExists("nested/test.txt"))
	assert.Equal(t, "test string content", env.ReadFileString("nested/test.txt"))
	env.RequireFileExists("nested/test.txt")
	env.AssertFileContains("nested/test.txt", "string")
}

func TestTestEnv_Chdir(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)

	t.Run("inner", func(t *testing.T) {
		env := NewTestEnv(t)
		env.Chdir("")

		wd, err := os.Getwd()
		require.NoError(t, err)
		resolved, err := filepath.EvalSymlinks(env.RootDir())
		require.NoError(t, err)
		assert.Equal(t, resolved, wd)
	})

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, orig, wd)
}

func TestTestEnv_SetEnv_Cleanup(t *testing.T) {
	key := "BOOKSCOUT_TESTUTIL_VAR"
	_ = os.Unsetenv(key)

	t.Run("inner", func(t *testing.T) {
		env := NewTestEnv(t)
		env.SetEnv(key, "value")
		assert.Equal(t, "value", os.Getenv(key))
	})

	_, ok := os.LookupEnv(key)
	assert.False(t, ok)
}

func TestGoldenHelper_AssertGoldenString(t *testing.T) {
	env := NewTestEnv(t)
	env.WriteFileString("golden/test.golden", "expected string content")

	golden := NewGoldenHelper(t, env.Path("golden"))
	assert.False(t, golden.IsUpdateMode())
	assert.Equal(t, env.Path("golden", "test.golden"), golden.GoldenPath("test.golden"))

	golden.AssertGoldenString("test.golden", "expected string content")
}

func TestResetConfig(t *testing.T) {
	origSite := config.Site
	origTimeout := config.Timeout

	t.Run("inner", func(t *testing.T) {
		ResetConfig(t)

		config.Site = "changed"
		config.Timeout = time.Hour
		viper.Set("store.site", "changed")
	})

	assert.Equal(t, origSite, config.Site)
	assert.Equal(t, origTimeout, config.Timeout)
	assert.False(t, viper.IsSet("store.site"))
}

func TestSetTestConfig(t *testing.T) {
	SetTestConfig(t, "http://127.0.0.1:1/se")

	assert.Equal(t, "http://127.0.0.1:1/se", config.BaseURL)
	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.Zero(t, config.RateLimit)
	assert.Equal(t, "bookscout-test", config.UserAgent)
	assert.Equal(t, config.DefaultSite, config.Site)
}

func TestSetViperValue(t *testing.T) {
	viper.Set("store.maxresults", 3)
	t.Cleanup(viper.Reset)

	t.Run("inner", func(t *testing.T) {
		SetViperValue(t, "store.maxresults", 7)
		assert.Equal(t, 7, viper.GetInt("store.maxresults"))
	})

	assert.Equal(t, 3, viper.GetInt("store.maxresults"))
}

func TestServeFixture(t *testing.T) {
	env := NewTestEnv(t)
	env.WriteFileString("page.html", "<html><body>hello</body></html>")

	server := NewIPv4TestServer(t, ServeFixture(t, env.Path("page.html")))

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
}
