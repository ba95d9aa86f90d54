package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
)

// AttemptSubmission mirrors the consumer's play-result message format
type AttemptSubmission struct {
	PlayerID   string    `json:"player_id"`
	SongID     int       `json:"song_id"`
	Tier       int       `json:"tier"`
	HardMode   bool      `json:"hard_mode"`
	Points     int       `json:"points"`
	ClearFlags int       `json:"clear_flags"`
	Combo      int       `json:"combo"`
	Timestamp  time.Time `json:"timestamp"`
	PlayCount  int       `json:"play_count"`
	ClearCount int       `json:"clear_count"`
}

var playerPrefixes = []string{
	"Phoenix", "Shadow", "Thunder", "Storm", "Blaze", "Ninja", "Dragon", "Wolf", "Hawk", "Viper",
	"Ghost", "Titan", "Frost", "Cyber", "Nova", "Raven", "Omega", "Alpha", "Delta", "Sigma",
	"Ace", "Bolt", "Crash", "Dash", "Edge", "Flash", "Glitch", "Haze", "Ion", "Jade",
	"Knight", "Luna", "Mystic", "Neon", "Orion", "Pulse", "Quantum", "Rebel", "Spark", "Turbo",
}

func getPlayerName(idx int) string {
	prefixIdx := idx % len(playerPrefixes)
	suffix := idx/len(playerPrefixes) + 1
	return fmt.Sprintf("%s%d", playerPrefixes[prefixIdx], suffix)
}

// Flag bits matching the reconciler's clear-flag layout
const (
	flagPlayed    = 0x01
	flagCleared   = 0x02
	flagFullCombo = 0x04
	flagExcellent = 0x08
)

func randomFlags(points int) int {
	flags := flagPlayed
	if points >= 700_000 {
		flags |= flagCleared
	}
	if points >= 980_000 {
		flags |= flagFullCombo
	}
	if points == 1_000_000 {
		flags |= flagExcellent
	}
	return flags
}

func randomAttempt(playerIdx, songCount int) AttemptSubmission {
	points := rand.Intn(400_000) + 600_000
	return AttemptSubmission{
		PlayerID:   getPlayerName(playerIdx),
		SongID:     rand.Intn(songCount) + 10000001,
		Tier:       rand.Intn(3),
		HardMode:   rand.Intn(10) == 0,
		Points:     points,
		ClearFlags: randomFlags(points),
		Combo:      rand.Intn(500),
		Timestamp:  time.Now(),
		PlayCount:  rand.Intn(50) + 1,
		ClearCount: rand.Intn(30),
	}
}

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "play-results", "Kafka topic")
	totalPlayers := flag.Int("players", 1000, "Total number of players to simulate")
	songCount := flag.Int("songs", 500, "Number of distinct songs to play")
	updatesPerSecond := flag.Int("rate", 100, "Submissions per second")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	brokerList := strings.Split(*brokers, ",")

	fmt.Println("Play-result load generator")
	fmt.Printf("  Brokers:       %s\n", *brokers)
	fmt.Printf("  Topic:         %s\n", *topic)
	fmt.Printf("  Players:       %d\n", *totalPlayers)
	fmt.Printf("  Songs:         %d\n", *songCount)
	fmt.Printf("  Rate:          %d/sec\n", *updatesPerSecond)
	fmt.Println()

	// Configure Sarama producer
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	// Create producer
	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	// Handle producer errors and successes
	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	// Send message helper
	sendMessage := func(submission AttemptSubmission) {
		data, err := json.Marshal(submission)
		if err != nil {
			log.Printf("Failed to marshal message: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(submission.PlayerID),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
			return
		}
	}

	fmt.Printf("Submitting play results (%d/sec), press Ctrl+C to stop\n\n", *updatesPerSecond)

	interval := time.Second / time.Duration(*updatesPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	var updateCount int64

	shutdown := func() {
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("\nCompleted. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	for {
		select {
		case <-sigChan:
			fmt.Println("\n\nShutting down...")
			shutdown()
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				fmt.Println("\n\nDuration reached, shutting down...")
				shutdown()
				return
			}

			// Regulars resubmit often to exercise the best-merge path
			var playerIdx int
			if rand.Intn(100) < 70 {
				playerIdx = rand.Intn(20)
			} else {
				playerIdx = rand.Intn(*totalPlayers-20) + 20
			}

			sendMessage(randomAttempt(playerIdx, *songCount))
			atomic.AddInt64(&updateCount, 1)

		case <-statsTicker.C:
			updates := atomic.LoadInt64(&updateCount)
			success := atomic.LoadInt64(&successCount)
			errors := atomic.LoadInt64(&errorCount)
			fmt.Printf("[%s] Submitted: %d | Sent: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				updates,
				success,
				errors,
			)
		}
	}
}
