//go:build mage

// Package main provides build targets for the dirstore project using Mage.
//
// Usage:
//
//	mage build    Compile the dirstore binary to bin/
//	mage test     Run all tests
//	mage race     Run all tests with the race detector
//	mage cover    Write a coverage profile to bin/coverage.out
//	mage lint     Run golangci-lint
//	mage clean    Remove build artifacts
//	mage install  Install dirstore to GOPATH/bin
//	mage stats    Print Go lines of code per package
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName   = "dirstore"
	binaryDir    = "bin"
	cmdDir       = "./cmd/dirstore"
	coverProfile = "coverage.out"
)

// Build compiles the dirstore binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs all tests with the race detector. The watch and export packages
// start goroutines.
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Cover runs all tests and prints per-function coverage.
func Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, coverProfile)
	if err := sh.RunV("go", "test", "-coverprofile="+profile, "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func="+profile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), filepath.Join(binaryDir, binaryName))
}

// lineCount holds production and test line counts of one package directory.
type lineCount struct {
	prod, test int
}

// Stats prints Go lines of code per package directory.
func Stats() error {
	counts := map[string]*lineCount{}

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			switch path {
			case "vendor", ".git", "magefiles", binaryDir:
				return filepath.SkipDir
			}
			if strings.HasPrefix(info.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		n, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		dir := filepath.Dir(path)
		c, ok := counts[dir]
		if !ok {
			c = &lineCount{}
			counts[dir] = c
		}
		if strings.HasSuffix(path, "_test.go") {
			c.test += n
		} else {
			c.prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(counts))
	for dir := range counts {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)

	var total lineCount
	fmt.Printf("%-24s %8s %8s\n", "package", "prod", "test")
	for _, dir := range dirs {
		c := counts[dir]
		fmt.Printf("%-24s %8d %8d\n", dir, c.prod, c.test)
		total.prod += c.prod
		total.test += c.test
	}
	fmt.Printf("%-24s %8d %8d\n", "total", total.prod, total.test)
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
