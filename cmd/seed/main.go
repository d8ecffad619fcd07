// Command seed populates the approval store with demo requests for local
// development of the reviewer UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"opsdesk/internal/config"
	"opsdesk/internal/database"
	"opsdesk/internal/models"
	"opsdesk/internal/repository"
	"opsdesk/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

var actions = []models.ApprovalAction{
	models.ActionStart,
	models.ActionStop,
	models.ActionResize,
	models.ActionTerminate,
	models.ActionInstall,
}

var regions = []string{
	"us-east-1", "us-west-2", "eu-west-1", "ap-south-1", "ap-southeast-2",
}

func main() {
	count := flag.Int("count", 20, "number of demo approval requests to create")
	resolve := flag.Bool("resolve", true, "resolve roughly half of the seeded requests")
	seed := flag.Int64("seed", 0, "deterministic faker seed (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	repo := repository.NewApprovalRepository(db)
	svc := service.NewApprovalService(repo, nil, cfg.ReviewerEmail)
	ctx := context.Background()

	created := 0
	for i := 0; i < *count; i++ {
		req, err := svc.Submit(ctx, service.SubmitInput{
			Action:      actions[gofakeit.Number(0, len(actions)-1)],
			ResourceID:  fmt.Sprintf("i-%s", gofakeit.HexUint64()[2:]),
			Region:      regions[gofakeit.Number(0, len(regions)-1)],
			RequestedBy: gofakeit.Email(),
			Details: map[string]interface{}{
				"reason":   gofakeit.Sentence(6),
				"ticketId": fmt.Sprintf("T-%d", gofakeit.Number(1000, 9999)),
				"priority": gofakeit.RandomString([]string{"Low", "Medium", "High"}),
			},
		})
		if err != nil {
			// Duplicate targets are possible with random data; skip them.
			log.Printf("skipping request %d: %v", i, err)
			continue
		}
		created++

		if *resolve && gofakeit.Bool() {
			outcome := models.ApprovalStatusApproved
			if gofakeit.Bool() {
				outcome = models.ApprovalStatusRejected
			}
			if _, err := svc.Resolve(ctx, req.ID, outcome); err != nil {
				log.Printf("failed to resolve seeded request %s: %v", req.ID, err)
			}
		}
	}

	log.Printf("Seeded %d approval requests", created)
}
