package translate

import "sync/atomic"

// Gate отбрасывает запуски с горячей клавиши, пока окно настроек записывает
// новую комбинацию. Pause и Resume идемпотентны, действует последний вызов.
type Gate struct {
	paused atomic.Bool
}

// Pause приостанавливает запуски с горячей клавиши.
func (g *Gate) Pause() {
	g.paused.Store(true)
}

// Resume снова разрешает запуски с горячей клавиши.
func (g *Gate) Resume() {
	g.paused.Store(false)
}

// Paused сообщает, приостановлены ли запуски с горячей клавиши.
func (g *Gate) Paused() bool {
	return g.paused.Load()
}
