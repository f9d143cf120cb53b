package app

import (
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/config"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/producer"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/producer/balancer"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/redis_decorator"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/bookstore/internal/service"
	kafka_config "github.com/RoyceAzure/lab/rj_kafka/kafka/config"
	kafka_producer "github.com/RoyceAzure/lab/rj_kafka/kafka/producer"
	"github.com/RoyceAzure/lab/rj_redis/pkg/redis_client"
)

const orderTopicPartitions = 6

// Container wires the order core for whatever transport sits on top of it.
type Container struct {
	BookRepo     db.IBookRepository
	CartRepo     redis_repo.ICartRepository
	CartService  *service.CartService
	OrderService *service.OrderService

	eventProducer kafka_producer.Producer
}

func New(cfg *config.Config) (*Container, error) {
	conn, err := db.GetDbConn(cfg.DbName, cfg.DbHost, cfg.DbPort, cfg.DbUser, cfg.DbPas)
	if err != nil {
		return nil, err
	}
	dao := db.NewDbDao(conn)
	if err := dao.InitMigrate(); err != nil {
		return nil, err
	}

	rdb, err := redis_client.GetRedisClient(cfg.RedisAddr, redis_client.WithPassword(cfg.RedisPassword))
	if err != nil {
		return nil, err
	}

	kafkaCfg := kafka_config.Config{
		Brokers:       cfg.KafkaBrokers,
		Topic:         cfg.OrderTopic,
		RetryAttempts: 3,
		BatchTimeout:  time.Second,
		BatchSize:     1,
		RequiredAcks:  -1,
		Balancer:      balancer.NewOrderBalancer(orderTopicPartitions),
	}

	eventProducer, err := kafka_producer.New(&kafkaCfg)
	if err != nil {
		return nil, err
	}

	// Cache-aside stock reads; the db conditional update stays the authority.
	bookRepo := redis_decorator.NewCacheAsideBookRepo(db.NewBookRepo(dao), redis_repo.NewBookStockRepo(rdb))
	orderRepo := db.NewOrderRepo(dao)
	cartRepo := redis_repo.NewCartRepo(rdb)

	orderService := service.NewOrderService(
		orderRepo,
		cartRepo,
		service.NewCartValidator(bookRepo),
		service.NewInventoryLedger(bookRepo),
		service.NewOrderAssembler(bookRepo),
		producer.NewOrderEventProducer(eventProducer),
	)

	return &Container{
		BookRepo:      bookRepo,
		CartRepo:      cartRepo,
		CartService:   service.NewCartService(cartRepo, bookRepo),
		OrderService:  orderService,
		eventProducer: eventProducer,
	}, nil
}

func (c *Container) Close() error {
	return c.eventProducer.Close()
}
