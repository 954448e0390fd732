//go:build ignore
// +build ignore

// Package main is a manual concurrency check for the borrow endpoint.
//
// Usage:
//
//	go run ./scripts/concurrency_test.go [clients]
//
// SERVER_ADDR overrides the target (default http://localhost:8080).
//
// What it does:
//  1. Creates one book, one copy of it and N clients through the API.
//  2. Fires N goroutines at once, each posting a borrow of that same copy.
//  3. Prints how many borrows were accepted.
//
// Borrows do not reserve the copy, so every request is expected to succeed.
// More than one open borrow of the copy afterwards is normal for this API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

const (
	defaultServerAddr = "http://localhost:8080"
	defaultClients    = 10
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

type borrowResult struct {
	ClientID   string
	BorrowID   string
	StatusCode int
	Err        error
}

func main() {
	serverAddr := os.Getenv("SERVER_ADDR")
	if serverAddr == "" {
		serverAddr = defaultServerAddr
	}

	n := defaultClients
	if len(os.Args) > 1 {
		v, err := strconv.Atoi(os.Args[1])
		if err != nil || v < 1 {
			log.Fatalf("clients must be a positive integer, got %q", os.Args[1])
		}
		n = v
	}

	run := time.Now().UnixNano()

	bookID := mustCreate(serverAddr+"/books", map[string]any{
		"title":  fmt.Sprintf("Concurrency %d", run),
		"author": "Load Test",
	})
	copyID := mustCreate(fmt.Sprintf("%s/books/%s/copies", serverAddr, bookID), nil)

	clientIDs := make([]string, n)
	for i := range clientIDs {
		clientIDs[i] = mustCreate(serverAddr+"/clients", map[string]any{
			"name":     fmt.Sprintf("Client %d", i),
			"email":    fmt.Sprintf("client-%d-%d@example.com", run, i),
			"password": "secret1",
		})
	}

	fmt.Printf("=== Library Borrow Concurrency Test ===\n")
	fmt.Printf("Server  : %s\n", serverAddr)
	fmt.Printf("Book    : %s\n", bookID)
	fmt.Printf("Copy    : %s\n", copyID)
	fmt.Printf("Clients : %d\n\n", n)

	results := make([]borrowResult, n)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i, cid := range clientIDs {
		wg.Add(1)
		go func(idx int, clientID string) {
			defer wg.Done()
			<-start
			results[idx] = attemptBorrow(serverAddr, clientID, copyID)
		}(i, cid)
	}

	fmt.Println("Firing all requests simultaneously...")
	close(start)
	wg.Wait()
	fmt.Println("All requests completed.")
	fmt.Println()

	var accepted, failures int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failures++
			fmt.Printf("  [ERR ] client=%-38s err=%v\n", r.ClientID, r.Err)
		case r.StatusCode == http.StatusCreated:
			accepted++
			fmt.Printf("  [OK  ] client=%-38s borrow=%s\n", r.ClientID, r.BorrowID)
		default:
			failures++
			fmt.Printf("  [FAIL] client=%-38s status=%d\n", r.ClientID, r.StatusCode)
		}
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Accepted : %d\n", accepted)
	fmt.Printf("Failures : %d\n", failures)
	fmt.Printf("Total    : %d\n", n)

	if failures > 0 {
		fmt.Printf("\n[WARNING] %d request(s) failed, check server logs for details.\n", failures)
		os.Exit(1)
	}
}

func attemptBorrow(serverAddr, clientID, copyID string) borrowResult {
	id, status, err := post(serverAddr+"/borrows", map[string]any{
		"client_id": clientID,
		"copy_id":   copyID,
	})
	return borrowResult{ClientID: clientID, BorrowID: id, StatusCode: status, Err: err}
}

func mustCreate(url string, body any) string {
	id, status, err := post(url, body)
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	if status != http.StatusCreated {
		log.Fatalf("POST %s: unexpected status %d", url, status)
	}
	return id
}

// post sends body as JSON and returns the "id" of the response object.
func post(url string, body any) (string, int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return "", 0, err
		}
	}

	resp, err := httpClient.Post(url, "application/json", &buf)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return "", resp.StatusCode, nil
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", resp.StatusCode, fmt.Errorf("bad JSON: %s", raw)
	}
	return parsed.ID, resp.StatusCode, nil
}
