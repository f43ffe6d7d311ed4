package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// SagaStep 多文件流程的一步
// Run失敗時 已完成步驟的Compensate會以反向順序執行
type SagaStep struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// runSaga 依序執行步驟 任一步失敗就反向補償已完成的步驟
// 補償失敗只記錄log 不中斷剩餘補償
func runSaga(ctx context.Context, name string, steps []SagaStep) error {
	for i, step := range steps {
		if err := step.Run(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				if steps[j].Compensate == nil {
					continue
				}
				if cerr := steps[j].Compensate(ctx); cerr != nil {
					log.Error().Err(cerr).
						Str("saga", name).
						Str("step", steps[j].Name).
						Msg("saga compensation failed")
				}
			}
			return fmt.Errorf("saga %s failed at step %s: %w", name, step.Name, err)
		}
	}
	return nil
}
