package components

import (
	"context"

	"staybook/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		worker.NewExpirySweeper,
	),
	fx.Invoke(startExpirySweeper),
)

func startExpirySweeper(lc fx.Lifecycle, sweeper *worker.ExpirySweeper) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}
