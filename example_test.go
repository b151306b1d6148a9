package matrixstore_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/matrixstore"
	"github.com/hupe1980/matrixstore/testutil"
)

func exampleFile() (string, func()) {
	dir, err := os.MkdirTemp("", "matrixstore-example")
	if err != nil {
		log.Fatal(err)
	}
	path := filepath.Join(dir, "matrixstore.sqlite")
	err = testutil.WriteFile(context.Background(), path, testutil.Fixture{
		Dates:     []string{"2020-01-01", "2020-02-01"},
		Practices: []string{"A81001", "A81002"},
		Presentations: []testutil.Presentation{
			{BNFCode: "0601023AWAAAAAA", Items: []float64{10, 20, 30, 40}},
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	return path, func() { _ = os.RemoveAll(dir) }
}

func ExampleOpen() {
	path, cleanup := exampleFile()
	defer cleanup()

	ctx := context.Background()
	db, err := matrixstore.Open(ctx, path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	row, err := db.QueryOne(ctx, "SELECT items FROM presentation WHERE bnf_code = ?", "0601023AWAAAAAA")
	if err != nil {
		log.Fatal(err)
	}
	items, _ := row.Vector(0)

	p, _ := db.PracticeOffset("A81002")
	d, _ := db.DateOffset("2020-02-01")
	_, dates, _ := db.Shape()
	fmt.Println(items[p*dates+d])
	// Output: 40
}

func ExampleStore_QueryColumns() {
	path, cleanup := exampleFile()
	defer cleanup()

	ctx := context.Background()
	db, err := matrixstore.Open(ctx, path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rows, err := db.QueryColumns(ctx, matrixstore.Columns{matrixstore.KindScalar, matrixstore.KindVector},
		"SELECT bnf_code, items FROM presentation")
	if err != nil {
		log.Fatal(err)
	}
	for row, err := range rows.All() {
		if err != nil {
			log.Fatal(err)
		}
		code, _ := row.Text(0)
		items, _ := row.Vector(1)
		fmt.Println(code, items)
	}
	// Output: 0601023AWAAAAAA [10 20 30 40]
}
