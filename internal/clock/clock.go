// internal/clock/clock.go

package clock

import (
	"sync"
	"time"
)

// Clock 抽象时间来源，调度循环只通过它取时和休眠，
// 测试里注入 Fake 即可用虚拟时间驱动调度
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// System 返回使用真实时间的时钟
func System() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Fake 虚拟时钟。Sleep 不真正阻塞，只把虚拟时间向前推
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake 以 start 为起点创建虚拟时钟
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Sleep(d time.Duration) {
	f.Advance(d)
}

// Advance 将虚拟时间推进 d
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Set 直接设定虚拟时间
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}
