// Load generator: drives N simulated clients through one room, exercising
// the join/flash/toggle/adjust cycle, and reports how many broadcasts each
// client saw.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/loltimeflash/server/internal/client"
	"github.com/loltimeflash/server/internal/game"
	"github.com/loltimeflash/server/internal/httpapi"
	"github.com/loltimeflash/server/internal/logger"
	"github.com/loltimeflash/server/internal/protocol"
)

func main() {
	var (
		url      = flag.String("url", "ws://localhost:8888/ws", "gateway websocket url")
		roomID   = flag.String("room", "", "room id (random when empty)")
		nClients = flag.Int("clients", 5, "number of simulated clients")
		duration = flag.Duration("duration", 30*time.Second, "test duration")
	)
	flag.Parse()

	log, err := logger.New("dev")
	if err != nil {
		panic(err)
	}

	code := *roomID
	if code == "" {
		code, err = httpapi.GenerateRoomID()
		if err != nil {
			log.Fatal("generate room id", zap.Error(err))
		}
	}
	log.Info("starting load test",
		zap.String("room", code),
		zap.Int("clients", *nClients),
		zap.Duration("duration", *duration))

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	var snapshots, errors atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < *nClients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := runClient(ctx, *url, code, i, &snapshots, &errors); err != nil && ctx.Err() == nil {
				log.Warn("client stopped early", zap.Int("client", i), zap.Error(err))
			}
		}(i)
	}
	wg.Wait()

	fmt.Printf("room=%s clients=%d snapshots=%d errors=%d\n",
		code, *nClients, snapshots.Load(), errors.Load())
}

func runClient(ctx context.Context, url, roomID string, n int, snapshots, errors *atomic.Int64) error {
	c, err := client.Dial(ctx, url)
	if err != nil {
		return err
	}
	defer c.Close()

	c.OnMessage = func(m protocol.ServerMessage) {
		switch m.Type {
		case protocol.MsgRoomSnapshot:
			snapshots.Add(1)
		case protocol.MsgError:
			errors.Add(1)
		}
	}

	if err := c.Join(ctx, roomID, fmt.Sprintf("loadtest-%02d", n)); err != nil {
		return err
	}

	listenErr := make(chan error, 1)
	go func() { listenErr <- c.Listen(ctx) }()

	ticker := time.NewTicker(time.Duration(500+rand.Intn(1500)) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.Leave(context.Background())
			return nil
		case err := <-listenErr:
			return err
		case <-ticker.C:
			role := game.Roles[rand.Intn(len(game.Roles))]
			var err error
			switch rand.Intn(4) {
			case 0:
				err = c.UseFlash(ctx, role)
			case 1:
				err = c.CancelFlash(ctx, role)
			case 2:
				item := game.ItemLucidityBoots
				if rand.Intn(2) == 0 {
					item = game.ItemCosmicInsight
				}
				err = c.ToggleItem(ctx, role, item)
			case 3:
				err = c.AdjustTimer(ctx, role, rand.Intn(21)-10)
			}
			if err != nil {
				return err
			}
		}
	}
}
