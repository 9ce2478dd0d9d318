package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/matchoracle/prediction-api/internal/auth"
	"github.com/matchoracle/prediction-api/internal/models"
)

// Config
const (
	DEFAULT_API_URL = "http://localhost:8080/api/v1"
	SEED_USER       = "seed-user"
)

func main() {
	apiURL := DEFAULT_API_URL
	if v := os.Getenv("API_URL"); v != "" {
		apiURL = v
	}

	loginSecret := os.Getenv("LOGIN_SECRET")
	if loginSecret == "" {
		log.Fatal("LOGIN_SECRET is required to sign in")
	}

	// A prediction runs ten searches and one generation
	client := &http.Client{Timeout: 2 * time.Minute}

	// 1. Sign in
	var login models.LoginResponse
	status := post(client, apiURL+"/auth/login", "", models.LoginRequest{
		UserID:      SEED_USER,
		DisplayName: "Seeder",
		Credential:  auth.Credential(loginSecret, SEED_USER),
	}, &login)
	if status != http.StatusOK {
		log.Fatalf("Login failed with status %d", status)
	}
	fmt.Printf("Signed in as %s\n", login.User.ID)

	// 2. Request a prediction for a sample match
	request := models.CreatePredictionRequest{
		MatchRequest: models.MatchRequest{
			Sport:     models.SportSoccer,
			HomeTeam:  "Manchester United",
			AwayTeam:  "Liverpool",
			League:    "Premier League",
			Venue:     "Old Trafford",
			MatchDate: time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		},
		Detail: models.DetailAdvanced,
	}

	var result models.PredictionResult
	status = post(client, apiURL+"/predictions", login.AccessToken, request, &result)
	fmt.Printf("Status: %d\n", status)

	if status == http.StatusCreated && result.Prediction != nil {
		fmt.Printf("✅ Prediction %s: %s %d - %d %s (%.0f%% confidence)\n",
			result.Prediction.ID,
			result.Prediction.HomeTeam, result.Prediction.PredictedHomeScore,
			result.Prediction.PredictedAwayScore, result.Prediction.AwayTeam,
			result.Prediction.ConfidencePercentage)
	} else {
		fmt.Println("❌ Prediction Failed!")
		os.Exit(1)
	}
}

// post sends body as JSON and decodes a successful response into out
func post(client *http.Client, url, token string, body, out interface{}) int {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("Failed to marshal JSON: %v", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		fmt.Printf("Response: %s\n", string(data))
		return resp.StatusCode
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}
	return resp.StatusCode
}
