package repository

import (
	"bufio"
	"os"
	"strings"

	"rewards_quest_bot/internal/model"

	"github.com/pkg/errors"
)

var ErrNoAccounts = errors.New("no accounts found")

// LoadAccounts reads one session token per line. Blank lines are skipped;
// indexes are 1-based in file order.
func LoadAccounts(path string) ([]model.Account, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open accounts file")
	}
	defer f.Close()

	var accounts []model.Account
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		token := strings.TrimSpace(strings.TrimSuffix(scanner.Text(), "\r"))
		if token == "" {
			continue
		}
		accounts = append(accounts, model.Account{Index: len(accounts) + 1, Token: token})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read accounts file")
	}

	if len(accounts) == 0 {
		return nil, errors.Wrap(ErrNoAccounts, path)
	}
	return accounts, nil
}
