package container_test

import (
	"context"
	"fmt"

	"github.com/openloom/loom/pkg/container"
	"github.com/openloom/loom/pkg/facts"
)

type Cache interface {
	Name() string
}

type redisCache struct{}

func (redisCache) Name() string { return "redis" }

type memoryCache struct{}

func (memoryCache) Name() string { return "memory" }

// Example demonstrates conditional wiring: a Redis-backed cache when the
// capability is available, an in-memory fallback otherwise.
func Example() {
	src := &facts.MapSource{
		Capabilities: map[string]bool{"redis": false},
	}

	c := container.New(container.Config{Facts: src})

	_ = c.Register(container.NewDescriptor("redis-cache").
		Type(&redisCache{}).
		Provides((*Cache)(nil)).
		OnCapability("redis").
		Factory(func(...any) (any, error) { return redisCache{}, nil }).
		Build())

	_ = c.Register(container.NewDescriptor("memory-cache").
		Type(&memoryCache{}).
		Provides((*Cache)(nil)).
		OnMissingBean("redis-cache").
		Factory(func(...any) (any, error) { return memoryCache{}, nil }).
		Build())

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		fmt.Println("start failed:", err)
		return
	}
	defer c.Close(ctx)

	cache, err := container.Get[Cache](c)
	if err != nil {
		fmt.Println("get failed:", err)
		return
	}
	fmt.Println("active cache:", cache.Name())

	// Output:
	// active cache: memory
}

// Example_lifecycle shows ordered construction and teardown across a
// small dependency chain.
func Example_lifecycle() {
	c := container.New(container.Config{})

	_ = c.Register(container.NewDescriptor("database").
		Factory(func(...any) (any, error) {
			fmt.Println("open database")
			return "db", nil
		}).
		PreDestroy(func(any) error {
			fmt.Println("close database")
			return nil
		}).
		Build())

	_ = c.Register(container.NewDescriptor("server").
		RequiresNamed("database").
		Factory(func(deps ...any) (any, error) {
			fmt.Println("start server")
			return "server", nil
		}).
		PreDestroy(func(any) error {
			fmt.Println("stop server")
			return nil
		}).
		Build())

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		fmt.Println("start failed:", err)
		return
	}
	if err := c.Close(ctx); err != nil {
		fmt.Println("close failed:", err)
	}

	// Output:
	// open database
	// start server
	// stop server
	// close database
}
