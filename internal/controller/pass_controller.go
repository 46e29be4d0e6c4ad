// internal/controller/pass_controller.go
package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/unclebandit/baz-scheduler/internal/logger"
	"github.com/unclebandit/baz-scheduler/internal/service"
)

// PassRunner runs one scheduling pass.
type PassRunner interface {
	Run(ctx context.Context) (*service.PassResult, error)
}

var _ PassRunner = (*service.Scheduler)(nil)

// PassController triggers passes over HTTP. Only one pass runs at a time; a
// request that arrives while one is in flight gets 409.
type PassController struct {
	Runner PassRunner

	mu sync.Mutex
}

func NewPassController(runner PassRunner) *PassController {
	return &PassController{Runner: runner}
}

func (c *PassController) RunPass(w http.ResponseWriter, r *http.Request) {
	if !c.mu.TryLock() {
		http.Error(w, "a pass is already running", http.StatusConflict)
		return
	}
	defer c.mu.Unlock()

	result, err := c.Runner.Run(r.Context())

	resp := map[string]interface{}{"result": result}
	status := http.StatusOK
	if err != nil {
		logger.Error("pass finished with errors", zap.Error(err))
		resp["error"] = err.Error()
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
