package config

type WorkerKeyStruct struct {
	PersistAnswersQueue  string
	PersistProgressQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnswersQueue:  "persist_answers_queue",
	PersistProgressQueue: "persist_progress_queue",
}
