// Copyright 2025 The WhereAmI Authors
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// Environment variables consulted for the Google services.
const (
	APIKeyEnv  = "GOOGLE_MAPS_API_KEY"
	ProjectEnv = "GOOGLE_CLOUD_PROJECT"
)

// APIKeyDisplayName is the display name of the key looked up through ADC.
const APIKeyDisplayName = "WhereAmI Geolocation Key"

// ErrNoAPIKey is returned when no Google API key can be found.
var ErrNoAPIKey = errors.New("no Google API key found")

// ResolveAPIKey returns the key in GOOGLE_MAPS_API_KEY or, when unset, retrieves
// it through Application Default Credentials from the API Keys service.
func ResolveAPIKey(ctx context.Context) (string, error) {
	if key := os.Getenv(APIKeyEnv); key != "" {
		return key, nil
	}

	log.Printf("%s is not set. Attempting to retrieve via ADC...", APIKeyEnv)

	key, err := apiKeyFromADC(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: set %s or configure ADC: %w", ErrNoAPIKey, APIKeyEnv, err)
	}

	log.Println("Retrieved Google API key via ADC")

	return key, nil
}

func apiKeyFromADC(ctx context.Context) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		// User credentials without a quota project carry no project.
		projectID = os.Getenv(ProjectEnv)
	}

	if projectID == "" {
		return "", fmt.Errorf("no project in default credentials and %s is not set", ProjectEnv)
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != APIKeyDisplayName {
			continue
		}

		// ListKeys redacts the secret.
		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key '%s' has an empty key string", APIKeyDisplayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", APIKeyDisplayName, projectID)
}
