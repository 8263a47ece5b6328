package admin

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundtrip(t *testing.T) {
	hash, err := HashPassword("правильная-лошадь-батарейка")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$") {
		t.Errorf("неожиданный формат хеша: %q", hash)
	}

	if !verifyArgon2id("правильная-лошадь-батарейка", hash) {
		t.Error("верный пароль не прошёл проверку")
	}
	if verifyArgon2id("неверный пароль", hash) {
		t.Error("неверный пароль прошёл проверку")
	}
}

func TestHashPasswordUniqueSalt(t *testing.T) {
	h1, err := HashPassword("пароль123")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashPassword("пароль123")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("одинаковые хеши для одного пароля — соль не случайна")
	}
	if !verifyArgon2id("пароль123", h1) || !verifyArgon2id("пароль123", h2) {
		t.Error("оба хеша должны проходить проверку")
	}
}

func TestVerifyArgon2idMalformed(t *testing.T) {
	for _, hash := range []string{"", "plain", "$argon2id$v=19$broken", "$md5$abc$def"} {
		if verifyArgon2id("пароль", hash) {
			t.Errorf("битый хеш %q прошёл проверку", hash)
		}
	}
}

func TestGenerateSecureTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := generateSecureToken()
		if len(token) < 32 {
			t.Fatalf("токен слишком короткий: %q", token)
		}
		if seen[token] {
			t.Fatal("токены повторяются")
		}
		seen[token] = true
	}
}

func TestPrincipalEducatorGroup(t *testing.T) {
	educator := &Principal{Username: "vospit1", Role: RoleEducator, GroupID: "group1"}
	if got := educator.EducatorGroup(); got != "group1" {
		t.Errorf("EducatorGroup() = %q, want group1", got)
	}

	root := &Principal{Username: "admin", Role: RoleAdmin, GroupID: "group1"}
	if got := root.EducatorGroup(); got != "" {
		t.Errorf("EducatorGroup() админа = %q, want пустую строку", got)
	}

	var nobody *Principal
	if nobody.IsEducator() || nobody.EducatorGroup() != "" {
		t.Error("nil-принципал не должен считаться воспитателем")
	}
}
