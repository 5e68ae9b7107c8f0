package decorator

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type (
	commandMetricsDecorator[C, R any] struct {
		base   CommandHandler[C, R]
		client MetricsClient
	}

	queryMetricsDecorator[Q, R any] struct {
		base   QueryHandler[Q, R]
		client MetricsClient
	}
)

func (d commandMetricsDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	start := time.Now()

	actionName := strings.ToLower(fmt.Sprintf("%T", cmd))

	defer func() {
		end := time.Since(start)

		d.client.Inc(fmt.Sprintf("commands.%s.duration", actionName), int(end.Seconds()))

		if err == nil {
			d.client.Inc(fmt.Sprintf("commands.%s.success", actionName), 1)

			return
		}

		d.client.Inc(fmt.Sprintf("commands.%s.failure", actionName), 1)
	}()

	return d.base.Handle(ctx, cmd)
}

func (d queryMetricsDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	start := time.Now()

	actionName := strings.ToLower(fmt.Sprintf("%T", query))

	defer func() {
		end := time.Since(start)

		d.client.Inc(fmt.Sprintf("queries.%s.duration", actionName), int(end.Seconds()))

		if err == nil {
			d.client.Inc(fmt.Sprintf("queries.%s.success", actionName), 1)

			return
		}

		d.client.Inc(fmt.Sprintf("queries.%s.failure", actionName), 1)
	}()

	return d.base.Execute(ctx, query)
}
