package trustscore_test

import (
	"os"
	"testing"

	"github.com/escrowhub/api/integration_tests/testutils"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutils.ShutdownShared()
	os.Exit(code)
}
