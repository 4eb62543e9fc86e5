package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitee.com/flycash/notification-gateway/internal/ioc"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/core/elog"
	"gopkg.in/yaml.v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	f, err := os.Open(*configPath)
	if err != nil {
		elog.Panic("打开配置文件失败", elog.FieldErr(err), elog.String("path", *configPath))
	}
	if err := econf.LoadFromReader(f, yaml.Unmarshal); err != nil {
		elog.Panic("加载配置失败", elog.FieldErr(err))
	}
	_ = f.Close()

	app := ioc.InitApp()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	app.Consumer.Start(ctx)

	type serverConfig struct {
		Addr string `yaml:"addr"`
	}
	sc := serverConfig{Addr: ":8080"}
	if err := econf.UnmarshalKey("server", &sc); err != nil {
		elog.Panic("读取服务配置失败", elog.FieldErr(err))
	}

	srv := &http.Server{Addr: sc.Addr, Handler: app.Engine}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			elog.Error("关闭HTTP服务失败", elog.FieldErr(err))
		}
	}()

	elog.Info("网关启动", elog.String("addr", sc.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		elog.Panic("HTTP服务异常退出", elog.FieldErr(err))
	}
}
