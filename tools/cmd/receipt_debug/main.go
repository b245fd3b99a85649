package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ChangeLaterX/Cookify-sub001/pkg/receipt"
)

// memCatalog serves a fixed ingredient list so the tool runs without a DB.
type memCatalog struct {
	names []string
}

func (m memCatalog) SearchIngredients(ctx context.Context, query string) ([]receipt.Candidate, error) {
	low := strings.ToLower(query)
	var out []receipt.Candidate
	for i, name := range m.names {
		nl := strings.ToLower(name)
		keep := strings.Contains(low, nl) || strings.Contains(nl, low)
		if !keep {
			for _, w := range strings.Fields(low) {
				if len(w) >= 3 && strings.Contains(nl, w) {
					keep = true
					break
				}
			}
		}
		if keep {
			out = append(out, receipt.Candidate{ID: uint(i + 1), Name: name})
		}
	}
	return out, nil
}

var defaultCatalog = []string{
	"Tomatoes", "Garlic", "Onions", "Potatoes", "Carrots", "Spinach",
	"Milk", "Butter", "Cheese", "Eggs", "Chicken Breast", "Ground Beef",
	"Salmon", "Bread", "Rice", "Pasta", "Olive Oil", "Apples", "Bananas",
}

// Debug utility: run the full pipeline on one image (or raw text file) and
// dump the result as JSON. Usage: go run ./tools/cmd/receipt_debug -file receipt.jpg
func main() {
	file := flag.String("file", "", "receipt image to process")
	textMode := flag.Bool("text", false, "treat the file as already-extracted text")
	flag.Parse()
	if *file == "" {
		fmt.Println("usage: receipt_debug -file <image> [-text]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}

	svc := receipt.NewService(memCatalog{names: defaultCatalog})

	var res receipt.ProcessedResult
	if *textMode {
		res, err = svc.ProcessText(context.Background(), string(data))
	} else {
		res, err = svc.Process(context.Background(), data)
	}
	if err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}

	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
}
