// smoketest drives a running server through its whole surface: health,
// catalog, then one streamed plan printed as it arrives.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tripcast/api/internal/models"
)

func main() {
	base := flag.String("base", "http://localhost:8080", "API base URL")
	mode := flag.String("mode", "quick", "plan mode: quick or full")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Minute}

	// 1. Wait for the server
	var err error
	for i := 0; i < 10; i++ {
		var resp *http.Response
		resp, err = client.Get(*base + "/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		log.Printf("Waiting for server... %v", err)
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		log.Fatalf("Server not reachable: %v", err)
	}

	// 2. Check the generator credential
	resp, err := client.Get(*base + "/health")
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	var health struct {
		GeneratorConfigured bool `json:"generator_configured"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		log.Fatalf("Failed to decode health response: %v", err)
	}
	resp.Body.Close()
	if !health.GeneratorConfigured {
		log.Fatal("GENERATOR_API_KEY is not configured on the server")
	}

	// 3. Fetch the activity catalog
	resp, err = client.Get(*base + "/api/v1/activities")
	if err != nil {
		log.Fatalf("Failed to fetch activities: %v", err)
	}
	var catalog struct {
		Activities []models.Activity `json:"activities"`
		Count      int               `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		log.Fatalf("Failed to decode activities: %v", err)
	}
	resp.Body.Close()
	if catalog.Count == 0 {
		log.Fatal("Activity catalog is empty")
	}
	log.Printf("Catalog has %d activities", catalog.Count)

	// 4. Stream a plan anchored at the first catalog entry
	candidates := catalog.Activities
	if len(candidates) > 8 {
		candidates = candidates[:8]
	}
	planReq := models.PlanRequest{
		Mode: models.PlanMode(*mode),
		Hotel: &models.Hotel{
			Name: "Smoke Test Hotel",
			Lat:  candidates[0].Lat,
			Lng:  candidates[0].Lng,
			City: "Jersey City",
		},
		Activities:  candidates,
		Preferences: &models.Preferences{Budget: 100, MaxDistance: 10, Duration: "Half Day"},
	}
	body, _ := json.Marshal(planReq)

	req, _ := http.NewRequest(http.MethodPost, *base+"/api/v1/plan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err = client.Do(req)
	if err != nil {
		log.Fatalf("Plan request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		log.Fatalf("Expected 200 OK, got %d. Body: %s", resp.StatusCode, buf.String())
	}

	log.Printf("Streaming %s plan:", *mode)
	done := false
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event models.StreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			log.Fatalf("Bad stream event %q: %v", line, err)
		}

		switch event.Type {
		case models.StreamEventChunk:
			fmt.Print(event.Content)
		case models.StreamEventDone:
			fmt.Println()
			log.Printf("Result payload: %s", event.Response)
			done = true
		case models.StreamEventError:
			fmt.Println()
			log.Fatalf("Stream reported an error: %s", event.Error)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Stream read failed: %v", err)
	}
	if !done {
		log.Fatal("Stream ended without a done event")
	}

	log.Println("SUCCESS: plan streamed end to end")
}
