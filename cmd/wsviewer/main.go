// wsviewer tails the debug notification stream of a running server.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"github.com/tripcast/api/internal/models"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/api/v1/debug/ws", "debug stream URL")
	flag.Parse()

	log.Printf("Connecting to %s", *url)
	conn, resp, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()
	log.Println("Connected, waiting for notifications...")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var note models.ProgressNotification
			if err := conn.ReadJSON(&note); err != nil {
				log.Printf("Read failed: %v", err)
				return
			}
			log.Printf("[%s] %-7s %s", note.Timestamp.Format("15:04:05.000"), note.Severity, note.Message)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
