package ioc

import (
	api "gitee.com/flycash/notification-gateway/internal/api/http"
	taskevt "gitee.com/flycash/notification-gateway/internal/event/task"
	"gitee.com/flycash/notification-gateway/internal/pkg/idgen"
	"gitee.com/flycash/notification-gateway/internal/repository"
	"gitee.com/flycash/notification-gateway/internal/repository/dao"
	"gitee.com/flycash/notification-gateway/internal/service/dispatch"
	templatesvc "gitee.com/flycash/notification-gateway/internal/service/template"
	"gitee.com/flycash/notification-gateway/internal/service/testsend"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/econf"
)

const defaultConsumerConcurrency = 8

// App 网关的两个运行面：HTTP 接口和任务消费者
type App struct {
	Engine   *gin.Engine
	Consumer *taskevt.Consumer
}

// InitApp 组装整个应用
func InitApp() *App {
	db := InitDB()
	redisClient := InitRedisClient()
	propertyCrypto := InitPropertyCrypto()

	templateRepo := repository.NewTemplateRepository(dao.NewTemplateDAO(db))
	channelRepo := repository.NewChannelRepository(dao.NewChannelDAO(db), propertyCrypto)
	recordRepo := repository.NewSendRecordRepository(dao.NewSendRecordDAO(db))

	idGen, err := idgen.NewGenerator()
	if err != nil {
		panic(err)
	}

	templateSvc := templatesvc.NewService(templateRepo)
	dispatchSvc := dispatch.NewService(templateSvc, channelRepo, recordRepo, idGen)

	type consumerConfig struct {
		Concurrency int64 `yaml:"concurrency"`
	}
	cc := consumerConfig{Concurrency: defaultConsumerConcurrency}
	if err := econf.UnmarshalKey("consumer", &cc); err != nil {
		panic(err)
	}
	consumer, err := taskevt.NewConsumer(dispatchSvc, InitKafkaConsumer(), cc.Concurrency)
	if err != nil {
		panic(err)
	}

	producer := taskevt.NewProducer(InitKafkaProducer())
	testSendSvc := testsend.NewService(testsend.NewTempConfigStore(), InitTestSendLimiter())
	auth := InitJwtAuth()
	handler := api.NewHandler(producer, testSendSvc, recordRepo, channelRepo, templateRepo,
		InitSubmitLimiter(redisClient), auth)

	engine := gin.Default()
	handler.RegisterRoutes(engine)
	return &App{Engine: engine, Consumer: consumer}
}

// InitJwtAuth 从配置的 jwt 段构建令牌组件
func InitJwtAuth() *api.JwtAuth {
	type Config struct {
		Key string `yaml:"key"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("jwt", &cfg); err != nil {
		panic(err)
	}
	return api.NewJwtAuth(cfg.Key)
}
