// mockllm is a stand-in for the completion API so the server can be
// exercised without a real credential. It streams a canned trip plan
// word by word over SSE.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultScript = `REASONING: The hotel sits between the waterfront and the museum quarter. ` +
	`Liberty Park is free and only a short walk away, ideal for the morning. ` +
	`The Maritime Museum fits the remaining budget comfortably. ` +
	`RESULT: [{"name":"Liberty Park","type":"park","time_needed_minutes":90,"why_chosen":"free and closest to the hotel"},` +
	`{"name":"Maritime Museum","type":"museum","time_needed_minutes":120,"why_chosen":"top rated within budget"}]`

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	delay := flag.Duration("delay", 120*time.Millisecond, "pause between fragments")
	script := flag.String("script", "", "file with the canned completion text")
	flag.Parse()

	text := defaultScript
	if *script != "" {
		data, err := os.ReadFile(*script)
		if err != nil {
			log.Fatalf("read script: %v", err)
		}
		text = string(data)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			Model  string `json:"model"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("completion requested, model=%s stream=%v", req.Model, req.Stream)

		if !req.Stream {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]string{
					"role":    "assistant",
					"content": text,
				}}},
			})
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")

		for _, piece := range strings.SplitAfter(text, " ") {
			writeDelta(w, flusher, piece)
			select {
			case <-r.Context().Done():
				return
			case <-time.After(*delay):
			}
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	})

	log.Printf("mock generator listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatal(err)
	}
}

func writeDelta(w http.ResponseWriter, flusher http.Flusher, content string) {
	payload, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"delta": map[string]string{"content": content}}},
	})
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}
