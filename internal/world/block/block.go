package block

import "fmt"

// Type представляет тип блока. Один байт на воксель.
type Type uint8

// Типы блоков
const (
	Air Type = iota
	Dirt
	Grass
	Stone
	// Unknown - соседний чанк ещё не сгенерирован. Это не пустота.
	Unknown
)

// IsSolid проверяет, является ли блок твёрдым
func (t Type) IsSolid() bool {
	return t == Dirt || t == Grass || t == Stone
}

// IsOpaque проверяет, закрывает ли блок грань соседа.
// Unknown считается непрозрачным, чтобы не рисовать грани в сторону несгенерированного мира.
func (t Type) IsOpaque() bool {
	return t.IsSolid() || t == Unknown
}

// IsValid проверяет, является ли значение допустимым типом блока для записи в мир
func (t Type) IsValid() bool {
	return t <= Stone
}

func (t Type) String() string {
	switch t {
	case Air:
		return "air"
	case Dirt:
		return "dirt"
	case Grass:
		return "grass"
	case Stone:
		return "stone"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Parse возвращает тип блока по имени
func Parse(name string) (Type, error) {
	for t := Air; t <= Unknown; t++ {
		if t.String() == name {
			return t, nil
		}
	}
	return Air, fmt.Errorf("неизвестный тип блока %q", name)
}

// Face - класс грани для выбора текстуры
type Face uint8

const (
	Top Face = iota
	Side
	Bottom
)
