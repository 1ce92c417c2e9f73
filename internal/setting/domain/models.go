package domain

// KeyManagerPIN holds the encoded manager PIN.
const KeyManagerPIN = "manager_pin"

type Setting struct {
	Key   string `gorm:"column:key;primaryKey"`
	Value string `gorm:"column:value"`
}

func (Setting) TableName() string { return "settings" }
