// Command pnpclient runs the plug-and-play node-id allocation handshake (spec section 4.10)
// against a real SocketCAN interface: it publishes its unique id, listens for a matching
// allocation response, and prints the adopted node id once one arrives.
//
// Grounded on samsamfire/gocanopen's cmd/canopen/main.go: flag-parsed interface name, a
// SocketCAN bus constructed and connected before anything else runs.
package main

import (
	"crypto/sha256"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/samsamfire/gocyphal/clock"
	"github.com/samsamfire/gocyphal/pnp"
	"github.com/samsamfire/gocyphal/transport/can"
	"github.com/samsamfire/gocyphal/transport/can/socketcan"
)

func main() {
	canInterface := flag.String("i", "can0", "socketcan interface e.g. can0, vcan0")
	seed := flag.String("seed", "gocyphal-demo-node", "seed string hashed into a 128-bit unique id")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	bus, err := socketcan.NewBus(*canInterface)
	if err != nil {
		logger.Error("could not open interface", "interface", *canInterface, "err", err)
		os.Exit(1)
	}
	if err := bus.Connect(); err != nil {
		logger.Error("connect failed", "err", err)
		os.Exit(1)
	}
	defer bus.Disconnect()

	var uniqueID [16]byte
	sum := sha256.Sum256([]byte(*seed))
	copy(uniqueID[:], sum[:16])

	queue := can.NewQueue()
	anon := can.NewAnonymousPublisher(queue)
	clk := clock.New(clock.Width64)

	canPub := &pnp.CANPublisher{Anon: anon, MTU: can.ClassicMTU, Timeout: clock.Duration(1_000_000), Now: clk.Now}
	client := pnp.NewClient(uniqueID, clock.Duration(500_000), canPub)

	go flushQueue(bus, queue, logger)

	if err := bus.Subscribe(&responseHandler{client: client}); err != nil {
		logger.Error("subscribe failed", "err", err)
		os.Exit(1)
	}

	fmt.Printf("requesting allocation for unique id %x\n", uniqueID)
	for {
		client.Poll(clk.Now())
		if node, adopted := client.Adopted(); adopted {
			fmt.Printf("adopted node id %d\n", node)
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func flushQueue(bus can.Bus, queue *can.Queue, logger *slog.Logger) {
	for {
		if queue.Len() == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		frame, _, ok := queue.Pop()
		if !ok {
			continue
		}
		if err := bus.Send(frame); err != nil {
			logger.Warn("send failed", "err", err)
		}
	}
}

type responseHandler struct {
	client *pnp.Client
}

func (h *responseHandler) Handle(frame can.Frame) {
	if len(frame.Data) == 0 {
		return
	}
	resp, ok := pnp.DecodeCANResponse(frame.Data[:len(frame.Data)-1])
	if !ok {
		return
	}
	h.client.HandleResponse(resp)
}
