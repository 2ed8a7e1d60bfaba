package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"fritter/crud"
	"fritter/http"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	// Load configuration from a .config.json file if present, otherwise use the default dev setup.
	config := LoadConfig(*productionBool)

	// Open a database connection and execute migrations.
	dbConfig := config.Database
	db := NewDB(dbConfig.ConnectionInfo())
	err := Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper, config.HMACKey),
		crud.WithFreet(),
		crud.WithBookmark(),
		crud.WithLike(),
		crud.WithEvent(),
		crud.WithReaderMode(),
	)
	must(err)

	// Set up a webserver.
	server := http.NewServer(config.IsProd(), config.CSRFKey, services)

	// Serve the app.
	logrus.WithField("port", config.Port).Info("starting fritter server")
	server.Run(config.Port)
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
