package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/docentia/simulacro-backend/internal/config"
	"github.com/docentia/simulacro-backend/internal/database"
	"github.com/docentia/simulacro-backend/internal/logger"
	"github.com/docentia/simulacro-backend/internal/model"
	"github.com/docentia/simulacro-backend/internal/repository"
)

// questionSeed is one entry of the seed file. IDs are derived from the
// module and text, so re-running the seeder updates in place instead of
// duplicating.
type questionSeed struct {
	Module      model.Module     `json:"module"`
	Text        string           `json:"text"`
	Options     []model.Option   `json:"options"`
	Correct     string           `json:"correct_option"`
	Explanation string           `json:"explanation"`
	Difficulty  model.Difficulty `json:"difficulty"`
	ImageURL    *string          `json:"image_url"`
	PromptOnly  bool             `json:"prompt_only"`
}

var seedNamespace = uuid.MustParse("8f3c6a47-9d15-4f0a-b1cc-2f5a30f6d8e1")

func main() {
	var seedFile string
	flag.StringVar(&seedFile, "file", "seed/questions.json", "Path to the question seed file")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)

	raw, err := os.ReadFile(seedFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", seedFile).Msg("Failed to read seed file")
	}

	var seeds []questionSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse seed file")
	}

	fmt.Printf("=== Seeding %d Questions ===\n", len(seeds))

	created, updated := 0, 0
	for _, s := range seeds {
		if !s.Module.Valid() {
			log.Warn().Str("module", string(s.Module)).Msg("Skipping unknown module")
			continue
		}

		q := &model.Question{
			ID:            uuid.NewSHA1(seedNamespace, []byte(string(s.Module)+"|"+s.Text)),
			Module:        s.Module,
			Text:          s.Text,
			Options:       s.Options,
			CorrectOption: s.Correct,
			Explanation:   s.Explanation,
			Difficulty:    s.Difficulty,
			ImageURL:      s.ImageURL,
			PromptOnly:    s.PromptOnly,
		}

		err := questionRepo.Update(ctx, q)
		switch {
		case err == nil:
			updated++
		case errors.Is(err, pgx.ErrNoRows):
			if err := questionRepo.Create(ctx, q); err != nil {
				log.Fatal().Err(err).Str("text", s.Text).Msg("Failed to create question")
			}
			created++
		default:
			log.Fatal().Err(err).Str("text", s.Text).Msg("Failed to update question")
		}
	}

	fmt.Printf("Done: %d created, %d updated\n", created, updated)
}
