package vulkan

import "sync"

type LockGroup string

const (
	CommandBufferManagement LockGroup = "command_buffer_management"
	BufferManagement        LockGroup = "buffer_management"
	PipelineManagement      LockGroup = "pipeline_management"
)

// VulkanLockPool serializes access to externally synchronized Vulkan objects:
// one mutex per lock group and one per queue family.
type VulkanLockPool struct {
	locks map[LockGroup]*sync.Mutex
	mu    sync.Mutex // Protects access to both maps

	queueMutexes map[uint32]*sync.Mutex // Queue family index as key
}

func NewVulkanLockPool() *VulkanLockPool {
	return &VulkanLockPool{
		locks:        make(map[LockGroup]*sync.Mutex),
		queueMutexes: make(map[uint32]*sync.Mutex),
	}
}

// Get or create a mutex for a specific group
func (vs *VulkanLockPool) lockFor(group LockGroup) *sync.Mutex {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if _, exists := vs.locks[group]; !exists {
		vs.locks[group] = &sync.Mutex{}
	}
	return vs.locks[group]
}

func (vs *VulkanLockPool) queueLockFor(queueFamilyIndex uint32) *sync.Mutex {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if _, exists := vs.queueMutexes[queueFamilyIndex]; !exists {
		vs.queueMutexes[queueFamilyIndex] = &sync.Mutex{}
	}
	return vs.queueMutexes[queueFamilyIndex]
}

func (vs *VulkanLockPool) SafeCall(group LockGroup, fn func() error) error {
	l := vs.lockFor(group)
	l.Lock()
	defer l.Unlock()

	return fn()
}

// SafeQueueCall runs fn while holding the lock of the given queue family.
// Graphics and present share a lock when they share a family.
func (vs *VulkanLockPool) SafeQueueCall(queueFamilyIndex uint32, fn func() error) error {
	l := vs.queueLockFor(queueFamilyIndex)
	l.Lock()
	defer l.Unlock()

	return fn()
}
