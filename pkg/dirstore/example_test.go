package dirstore_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/dirstore/pkg/dirstore"
	"github.com/mesh-intelligence/dirstore/pkg/types"
)

func Example() {
	dir, err := os.MkdirTemp("", "dirstore-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	store := dirstore.NewStore()
	if err := store.Attach(types.Config{Backend: types.BackendFS, DataDir: filepath.Join(dir, "data")}); err != nil {
		panic(err)
	}
	defer store.Detach()

	people, err := store.GetTable("people")
	if err != nil {
		panic(err)
	}
	_ = people.AddFieldValues("p1", "city", []string{"Oslo"})
	_ = people.AddFieldValues("p2", "city", []string{"Bergen"})
	_ = people.AddFieldValues("p3", "city", []string{"Oslo"})

	ids, _ := people.ListEntriesByFieldValue("city", []string{"Oslo"})
	fmt.Println(ids)
	// Output: [p1 p3]
}
