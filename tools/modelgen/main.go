package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gen"
	"gorm.io/gorm"
)

// Regenerates the row models of the radar tables from a migrated database.
func main() {
	var dsn, out string
	flag.StringVar(&dsn, "dsn", os.Getenv("RADAR_DB_DSN"), "postgres dsn")
	flag.StringVar(&out, "out", "internal/adapter/repo/gorm/model", "output dir for generated models")
	flag.Parse()

	if dsn == "" {
		log.Fatal("missing --dsn or RADAR_DB_DSN")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:      out,
		ModelPkgPath: "model",
		Mode:         gen.WithoutContext,
	})
	g.UseDB(db)
	g.GenerateModelAs("mutes", "Mute")
	g.GenerateModelAs("dispatch_log", "DispatchLog")
	g.Execute()

	fmt.Printf("generated gorm models at %s\n", out)
}
