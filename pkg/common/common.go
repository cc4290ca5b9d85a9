package common

import (
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/bcrypt"
)

const (
	NA = "N/A"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

// UUIDint64 returns a snowflake id, unique per process node.
func UUIDint64() int64 {
	idNodeOnce.Do(func() {
		node, err := snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
		idNode = node
	})
	return idNode.Generate().Int64()
}

// ParseID parses a decimal id string as sent by API clients.
func ParseID(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// HashPassword returns a salted bcrypt hash. cost <= 0 selects bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func IfEmptyStr(src string, defval string) string {
	if strings.TrimSpace(src) == "" {
		return defval
	}
	return src
}
