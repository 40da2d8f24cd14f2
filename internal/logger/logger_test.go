package logger

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestPrepareLogger(t *testing.T) {
	defer func() {
		log.SetOutput(os.Stdout)
		log.SetLevel(log.WarnLevel)
	}()

	t.Run("level", func(t *testing.T) {
		closer, err := PrepareLogger(Config{Level: "debug"})
		require.NoError(t, err)
		require.Equal(t, log.DebugLevel, log.GetLevel())
		require.NoError(t, closer.Close())

		closer, err = PrepareLogger(Config{Level: "WARN"})
		require.NoError(t, err)
		require.Equal(t, log.WarnLevel, log.GetLevel())
		require.NoError(t, closer.Close())
	})

	t.Run("incorrect level", func(t *testing.T) {
		_, err := PrepareLogger(Config{Level: "loud"})
		require.Error(t, err)
	})

	t.Run("file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "events.log")
		closer, err := PrepareLogger(Config{Level: "info", File: file})
		require.NoError(t, err)

		log.Info("written to file")
		data, err := os.ReadFile(file)
		require.NoError(t, err)
		require.Contains(t, string(data), "written to file")

		log.SetOutput(os.Stdout)
		require.NoError(t, closer.Close())
		f, ok := closer.(*os.File)
		require.True(t, ok)
		_, err = f.Write([]byte("after close"))
		require.ErrorIs(t, err, os.ErrClosed)
	})

	t.Run("file in missing directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "missing", "events.log")
		_, err := PrepareLogger(Config{Level: "info", File: file})
		require.Error(t, err)
	})
}
