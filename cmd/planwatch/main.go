// Command planwatch connects to a plannerd stream and prints plans,
// progress and replayed frames as they arrive.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/server"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/sim"
)

// envelope is server.Message with the payload left undecoded.
type envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

func main() {
	addr := flag.String("addr", "localhost:3000", "plannerd address")
	replay := flag.String("replay", "", "Replay the run with this ID, then keep listening")
	progress := flag.Bool("progress", false, "Print search progress messages")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/plans"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial %s: %v", u.String(), err)
	}
	defer conn.Close()
	log.Printf("connected to %s", u.String())

	if *replay != "" {
		req := server.Message{Type: server.MessageTypeReplay, ID: *replay}
		if err := conn.WriteJSON(req); err != nil {
			log.Fatalf("replay request: %v", err)
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			var msg envelope
			if err := conn.ReadJSON(&msg); err != nil {
				log.Printf("read: %v", err)
				return
			}
			show(msg, *progress)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		<-done
	}
}

func show(msg envelope, progress bool) {
	switch msg.Type {
	case server.MessageTypePlan:
		var fp core.FleetPlan
		if err := json.Unmarshal(msg.Data, &fp); err != nil {
			log.Printf("bad plan payload: %v", err)
			return
		}
		m := sim.Summarize(&fp)
		fmt.Printf("plan %s: %d agents, makespan %d, sum of costs %d, %d residual conflicts\n",
			msg.ID, m.Agents, m.Makespan, m.SumOfCosts, m.ResidualConflicts)
	case server.MessageTypeFrame:
		var f sim.Frame
		if err := json.Unmarshal(msg.Data, &f); err != nil {
			log.Printf("bad frame payload: %v", err)
			return
		}
		fmt.Printf("run %s step %d: %v", msg.ID, f.Step, f.Positions)
		if f.Collisions > 0 {
			fmt.Printf(" (%d shared)", f.Collisions)
		}
		fmt.Println()
	case server.MessageTypeProgress:
		if progress {
			fmt.Printf("progress %s: %s\n", msg.ID, msg.Data)
		}
	case server.MessageTypeError:
		fmt.Printf("error %s: %s\n", msg.ID, msg.Data)
	default:
		fmt.Printf("%s: %s\n", msg.Type, msg.Data)
	}
}
