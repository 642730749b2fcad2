// Command s4pack opens a DBPF archive and lists or extracts its
// resources.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/xyproto/s4pack/internal/dbpf"
	"github.com/xyproto/s4pack/internal/rid"
)

const versionString = "s4pack 1.0.0"

func main() {
	var (
		listFlag    = flag.Bool("list", false, "list every resource's RID (colon form)")
		extractFlag = flag.String("extract", "", "extract the resource with this RID (any text form) to stdout")
		version     = flag.Bool("version", false, "print version information and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println(versionString)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 1 {
		log.Fatalf("usage: s4pack [-list] [-extract RID] <package.dbpf>")
	}
	path := args[0]

	archive, err := dbpf.OpenFile(path)
	if err != nil {
		log.Fatalf("s4pack: open %s: %v", path, err)
	}

	switch {
	case *extractFlag != "":
		id, err := rid.Parse(*extractFlag)
		if err != nil {
			log.Fatalf("s4pack: parse RID %q: %v", *extractFlag, err)
		}
		content, err := archive.Get(id)
		if err != nil {
			log.Fatalf("s4pack: extract %s: %v", id, err)
		}
		if _, err := os.Stdout.Write(content); err != nil {
			log.Fatalf("s4pack: write stdout: %v", err)
		}

	case *listFlag:
		scanner, err := archive.Scanner()
		if err != nil {
			log.Fatalf("s4pack: scan %s: %v", path, err)
		}
		for e := range scanner.Scan(nil) {
			fmt.Println(rid.Format(e.ID, rid.Colon))
		}
		if err := scanner.Err(); err != nil {
			log.Fatalf("s4pack: scan %s: %v", path, err)
		}

	default:
		log.Fatalf("usage: s4pack [-list] [-extract RID] <package.dbpf>")
	}
}
