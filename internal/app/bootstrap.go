package app

import (
	"errors"
	"fmt"

	"github.com/station-rewards/internal/config"
	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/provider"
	"github.com/station-rewards/internal/router"
	"github.com/station-rewards/internal/worker"
)

// BuildRunner 按运行模式组装 HTTP 与 Worker 服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, *provider.Container, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}
	if err := ValidateMode(mode); err != nil {
		return nil, nil, err
	}

	container := provider.NewContainer(cfg)

	var services []Service
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Host+":"+cfg.Server.Port, engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		switch {
		case cfg.Queue.Enabled:
			workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				return nil, container, err
			}
			services = append(services, workerService)
		case mode == ModeWorker:
			return nil, container, errors.New("worker mode requires queue.enabled=true")
		default:
			// 全量模式下队列未启用时只跑 HTTP，发券通知被跳过
			logger.Warnw("app_worker_skipped_queue_disabled", "mode", mode)
		}
	}

	if len(services) == 0 {
		return nil, container, fmt.Errorf("no services initialized for mode %q", mode)
	}
	return NewRunner(services...), container, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, container, err := BuildRunner(opts.Config, opts.Mode)
	if container != nil {
		defer container.Close()
	}
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Host+":"+opts.Config.Server.Port, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
