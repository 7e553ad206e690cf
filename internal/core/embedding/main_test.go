package embedding

import (
	"os"
	"testing"

	"recipe-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}
