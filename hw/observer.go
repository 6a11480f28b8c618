package hw

// An Observer monitors a CPU. Observers are called synchronously, in the
// order they were added, from within CPU.Execute.
type Observer interface {
	// BeforeInstruction is called before the instruction at pc executes.
	BeforeInstruction(cpu *CPU, pc uint16)

	// AfterInstruction is called once a known instruction has executed.
	AfterInstruction(cpu *CPU, res StepResult)

	// UnknownInstruction is called when an opcode absent from the
	// instruction table has been skipped.
	UnknownInstruction(cpu *CPU, res StepResult)

	// Interrupt is called once an interrupt has been serviced. prevpc is the
	// address of the instruction that was about to be executed, curpc is the
	// address of the interrupt handler.
	Interrupt(cpu *CPU, prevpc, curpc uint16, isNMI bool)
}

// NopObserver implements Observer with no-ops. Embed it to implement only a
// subset of Observer.
type NopObserver struct{}

func (NopObserver) BeforeInstruction(*CPU, uint16)       {}
func (NopObserver) AfterInstruction(*CPU, StepResult)    {}
func (NopObserver) UnknownInstruction(*CPU, StepResult)  {}
func (NopObserver) Interrupt(*CPU, uint16, uint16, bool) {}
