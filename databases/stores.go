package databases

// Stores groups every collection store the case workflow reads and writes
type Stores struct {
	Cases          CaseDatabase
	SolveRequests  SolveRequestDatabase
	Interrogations InterrogationDatabase
	Intake         IntakeDatabase
	RewardTips     RewardTipDatabase
	Suspects       SuspectDatabase
	Notifications  NotificationDatabase
	Payments       PaymentDatabase
	Evidence       EvidenceDatabase
	Boards         BoardDatabase
	Tx             Transactor
}

// NewStores builds the mongo backed stores for db
func NewStores(db DatabaseHelper) *Stores {
	return &Stores{
		Cases:          NewCaseDatabase(db),
		SolveRequests:  NewSolveRequestDatabase(db),
		Interrogations: NewInterrogationDatabase(db),
		Intake:         NewIntakeDatabase(db),
		RewardTips:     NewRewardTipDatabase(db),
		Suspects:       NewSuspectDatabase(db),
		Notifications:  NewNotificationDatabase(db),
		Payments:       NewPaymentDatabase(db),
		Evidence:       NewEvidenceDatabase(db),
		Boards:         NewBoardDatabase(db),
		Tx:             NewTransactor(db.Client()),
	}
}
