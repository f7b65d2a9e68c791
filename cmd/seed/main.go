package main

import (
	"flag"
	"fmt"
	"log"
	"safe-space/auth"
	"safe-space/domain"
	"safe-space/errors"
	"safe-space/infrastructure/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

// demoPassword satisfies the registration rules so the accounts can log in.
const demoPassword = "Demo!Passw0rd2024"

type demoUser struct {
	name  string
	email string
	role  domain.Role
}

var demoUsers = []demoUser{
	{"Sam Rivera", "sam@safespace.test", domain.RoleSurvivor},
	{"Alex Kim", "alex@safespace.test", domain.RoleSurvivor},
	{"Dr. Jordan Lee", "jordan@safespace.test", domain.RoleCounsellor},
	{"Morgan Patel", "morgan@safespace.test", domain.RoleLegal},
}

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB (the server must be stopped)")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	messages, err := storage.NewMessageRepository(db, logs.GetLoggerFromString("WARN"))
	if err != nil {
		log.Fatal(err)
	}
	defer messages.Close()
	users := storage.NewUserRepository(db)

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		log.Fatal(err)
	}

	accounts := make(map[string]domain.Account, len(demoUsers))
	for _, u := range demoUsers {
		account, err := users.CreateUser(u.name, u.email, hash, u.role)
		if errors.IsUserAlreadyExists(err) {
			account, err = users.GetUserByEmail(u.email)
		}
		if err != nil {
			log.Fatalf("seeding %s: %v", u.email, err)
		}
		accounts[u.email] = account
		fmt.Printf("%-12s %-24s %s\n", account.Role, account.Email, account.ID)
	}

	counsellor := accounts["jordan@safespace.test"]
	conversation := []struct {
		from, to domain.Account
		body     string
	}{
		{accounts["sam@safespace.test"], counsellor, "Hi, I was given this contact by the helpline."},
		{counsellor, accounts["sam@safespace.test"], "Hi Sam, thank you for reaching out. How are you feeling today?"},
		{accounts["sam@safespace.test"], counsellor, "A bit better. Can we talk about a safety plan?"},
		{accounts["alex@safespace.test"], counsellor, "Is there someone available this evening?"},
	}
	for _, m := range conversation {
		if _, err := messages.Append(m.from.ID, m.to.ID, m.body); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Printf("\n%d messages appended, password for every account: %s\n", len(conversation), demoPassword)
}
